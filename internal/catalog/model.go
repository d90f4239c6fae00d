package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

// LowStockThreshold is a presentation hint only, not an invariant.
const LowStockThreshold = 10

type Product struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	Price         int64         `json:"price" db:"price"`
	StockQuantity int           `json:"stock_quantity" db:"stock_quantity"`
	ImageURL      string        `json:"image_url,omitempty" db:"image_url"`
	ProducerID    uuid.NullUUID `json:"producer_id" db:"producer_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the product should be flagged as running out.
func (p Product) LowStock() bool {
	return p.StockQuantity < LowStockThreshold
}
