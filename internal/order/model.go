package order

import (
	"time"

	"github.com/gofrs/uuid"
)

// Status is the order lifecycle state. Transitions are one-directional and
// enforced by the service; clients only request them.
type Status string

const (
	StatusPendingValidation Status = "pending_validation"
	StatusValidated         Status = "validated"
	StatusInTransit         Status = "in_transit"
	StatusDelivered         Status = "delivered"
	StatusRejected          Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingValidation, StatusValidated, StatusInTransit, StatusDelivered, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

var allowedTransitions = map[Status][]Status{
	StatusPendingValidation: {StatusValidated, StatusRejected},
	StatusValidated:         {StatusInTransit},
	StatusInTransit:         {StatusDelivered},
	StatusDelivered:         {},
	StatusRejected:          {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given one, in a
// stable order. The returned slice must not be mutated.
func AllowedTransitions(from Status) []Status {
	return allowedTransitions[from]
}

var statusLabels = map[Status]string{
	StatusPendingValidation: "Pending validation",
	StatusValidated:         "Validated - preparing",
	StatusInTransit:         "In transit",
	StatusDelivered:         "Delivered",
	StatusRejected:          "Rejected",
}

// Label returns the display label for s. Total over the known statuses.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var statusColors = map[Status]string{
	StatusPendingValidation: "orange",
	StatusValidated:         "blue",
	StatusInTransit:         "purple",
	StatusDelivered:         "green",
	StatusRejected:          "red",
}

// Color returns the display color associated with s.
func (s Status) Color() string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return "gray"
}

// Item is a single order line. UnitPrice is captured at order time and is
// never recomputed from the live catalogue price.
type Item struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
}

type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Number          string        `json:"order_number" db:"order_number"`
	ClientID        uuid.NullUUID `json:"client_id" db:"client_id"`
	ClientName      string        `json:"client_name" db:"client_name"`
	Phone           string        `json:"phone" db:"phone"`
	DeliveryAddress string        `json:"delivery_address" db:"delivery_address"`
	Items           []Item        `json:"items" db:"-"`
	TotalPrice      int64         `json:"total_price" db:"total_price"`
	Status          Status        `json:"status" db:"status"`
	DelivererID     uuid.NullUUID `json:"deliverer_id" db:"deliverer_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}
