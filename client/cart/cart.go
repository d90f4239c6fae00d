// Package cart holds the pending purchase quantities of one session. The
// cart lives in process memory only: it starts empty, is cleared after a
// successful order submission and does not survive a restart.
package cart

import (
	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/client"
)

type Cart struct {
	quantities map[uuid.UUID]int
}

func New() *Cart {
	return &Cart{quantities: make(map[uuid.UUID]int)}
}

// Add increments the quantity for the product by one, creating the entry if
// absent. No upper bound: stock is validated server-side at submission.
func (c *Cart) Add(productID uuid.UUID) {
	c.quantities[productID]++
}

// SetQuantity applies a delta, clamping the result at zero. A zero entry is
// kept but counts as inactive.
func (c *Cart) SetQuantity(productID uuid.UUID, delta int) {
	quantity := c.quantities[productID] + delta
	if quantity < 0 {
		quantity = 0
	}
	c.quantities[productID] = quantity
}

// Quantity returns the current quantity for the product, zero if absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	return c.quantities[productID]
}

// Empty reports whether the cart has no active entry.
func (c *Cart) Empty() bool {
	for _, quantity := range c.quantities {
		if quantity > 0 {
			return false
		}
	}
	return true
}

// Clear empties the cart. Called after a successful order submission.
func (c *Cart) Clear() {
	c.quantities = make(map[uuid.UUID]int)
}

// Line is one active cart entry priced against the current catalogue.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice int64
	Subtotal  int64
}

// Summary is the priced view of the cart.
type Summary struct {
	Lines []Line
	Total int64
}

// Summarize prices every active entry against the given catalogue. Entries
// whose product id does not resolve are skipped, so a stale cart never
// breaks the total.
func (c *Cart) Summarize(catalogue []client.Product) Summary {
	var summary Summary
	for _, product := range catalogue {
		quantity := c.quantities[product.ID]
		if quantity <= 0 {
			continue
		}
		subtotal := int64(quantity) * product.Price
		summary.Lines = append(summary.Lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		summary.Total += subtotal
	}
	return summary
}
