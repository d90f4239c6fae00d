// Package workflow drives the order lifecycle from the consumer side:
// submission from the cart, validation and deliverer assignment, delivery
// progress and public tracking. The backend stays authoritative for every
// transition; the controller only requests them and renders what is allowed.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/client/cart"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

var (
	ErrNotAuthenticated    = errors.New("sign in before submitting an order")
	ErrEmptyCart           = errors.New("the cart is empty")
	ErrSubmissionInFlight  = errors.New("an order submission is already in progress")
	ErrNoDelivererSelected = errors.New("select a deliverer first")
	ErrDeclined            = errors.New("action cancelled")
	ErrNoActionAvailable   = errors.New("no transition available for this order")
)

// API is the slice of the HTTP client the controller uses.
type API interface {
	Authenticated() bool
	ListProducts(ctx context.Context) ([]client.Product, error)
	CreateOrder(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error)
	ListOrders(ctx context.Context) ([]client.Order, error)
	ListPendingOrders(ctx context.Context) ([]client.Order, error)
	ListDeliverers(ctx context.Context) ([]client.User, error)
	AssignOrder(ctx context.Context, orderID, delivererID uuid.UUID) (*client.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status order.Status) (*client.Order, error)
	TrackOrder(ctx context.Context, number string) (*client.TrackedOrder, error)
}

// ClientDetails is what the client fills in at checkout.
type ClientDetails struct {
	Name    string
	Phone   string
	Address string
}

type Controller struct {
	api       API
	cart      *cart.Cart
	notifier  Notifier
	confirmer Confirmer

	// submitting is the button-disable analog: set synchronously when a
	// submission starts, released in a deferred path whatever the outcome.
	submitting atomic.Bool

	catalogue []client.Product
}

func NewController(api API, basket *cart.Cart, notifier Notifier, confirmer Confirmer) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		api:       api,
		cart:      basket,
		notifier:  notifier,
		confirmer: confirmer,
	}
}

func (c *Controller) Cart() *cart.Cart {
	return c.cart
}

// Catalogue returns the last fetched product snapshot.
func (c *Controller) Catalogue() []client.Product {
	return c.catalogue
}

// RefreshCatalogue replaces the product snapshot wholesale; on failure the
// previous snapshot is kept.
func (c *Controller) RefreshCatalogue(ctx context.Context) error {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return err
	}
	c.catalogue = products
	return nil
}

// CartSummary prices the cart against the current catalogue snapshot.
func (c *Controller) CartSummary() cart.Summary {
	return c.cart.Summarize(c.catalogue)
}

// Submit builds an order from the cart and sends it. Preconditions are
// checked before any network call: an in-flight submission, a missing token
// or an empty cart all abort locally. On success the cart is cleared, the
// catalogue is refreshed to reflect the stock decrement and the order number
// returned by the backend is reported.
func (c *Controller) Submit(ctx context.Context, details ClientDetails) (string, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		c.notifier.Notify(SeverityWarn, ErrSubmissionInFlight.Error())
		return "", ErrSubmissionInFlight
	}
	defer c.submitting.Store(false)

	if !c.api.Authenticated() {
		c.notifier.Notify(SeverityWarn, ErrNotAuthenticated.Error())
		return "", ErrNotAuthenticated
	}

	summary := c.cart.Summarize(c.catalogue)
	if len(summary.Lines) == 0 {
		c.notifier.Notify(SeverityWarn, ErrEmptyCart.Error())
		return "", ErrEmptyCart
	}

	items := make([]client.OrderItem, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, client.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	created, err := c.api.CreateOrder(ctx, client.CreateOrderRequest{
		ClientName:      details.Name,
		Phone:           details.Phone,
		DeliveryAddress: details.Address,
		Items:           items,
		TotalPrice:      summary.Total,
	})
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return "", err
	}

	c.cart.Clear()
	if refreshErr := c.RefreshCatalogue(ctx); refreshErr != nil {
		c.notifier.Notify(SeverityWarn, "order placed, but the catalogue could not be refreshed")
	}

	c.notifier.Notify(SeveritySuccess, fmt.Sprintf("order %s placed", created.Number))
	return created.Number, nil
}

// PendingOrders is the validation queue for staff.
func (c *Controller) PendingOrders(ctx context.Context) ([]client.Order, error) {
	orders, err := c.api.ListPendingOrders(ctx)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}
	return orders, nil
}

// Deliverers lists the approved deliverer accounts available for assignment.
func (c *Controller) Deliverers(ctx context.Context) ([]client.User, error) {
	deliverers, err := c.api.ListDeliverers(ctx)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}
	return deliverers, nil
}

// Assign binds the selected deliverer to the order. Exactly one deliverer
// must be selected before the request goes out.
func (c *Controller) Assign(ctx context.Context, orderID, delivererID uuid.UUID) (*client.Order, error) {
	if delivererID == uuid.Nil {
		c.notifier.Notify(SeverityWarn, ErrNoDelivererSelected.Error())
		return nil, ErrNoDelivererSelected
	}

	assigned, err := c.api.AssignOrder(ctx, orderID, delivererID)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}

	c.notifier.Notify(SeveritySuccess, fmt.Sprintf("order %s assigned", assigned.Number))
	return assigned, nil
}

// Reject refuses a pending order. The confirmation surface must approve
// before anything is sent.
func (c *Controller) Reject(ctx context.Context, o client.Order) error {
	if c.confirmer == nil || !c.confirmer.Confirm(fmt.Sprintf("Reject order %s?", o.Number)) {
		return ErrDeclined
	}

	if _, err := c.api.UpdateOrderStatus(ctx, o.ID, order.StatusRejected); err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return err
	}

	c.notifier.Notify(SeveritySuccess, fmt.Sprintf("order %s rejected", o.Number))
	return nil
}

// AssignedOrders lists the caller's orders; for a deliverer the backend
// already scopes this to their assignments.
func (c *Controller) AssignedOrders(ctx context.Context) ([]client.Order, error) {
	orders, err := c.api.ListOrders(ctx)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}
	return orders, nil
}

// NextDeliveryAction returns the single transition a deliverer may request
// for the order: in_transit from validated, delivered from in_transit.
// Anything else has no action.
func NextDeliveryAction(status order.Status) (order.Status, bool) {
	switch status {
	case order.StatusValidated:
		return order.StatusInTransit, true
	case order.StatusInTransit:
		return order.StatusDelivered, true
	}
	return "", false
}

// Advance requests the next delivery transition for the order.
func (c *Controller) Advance(ctx context.Context, o client.Order) (*client.Order, error) {
	next, ok := NextDeliveryAction(o.Status)
	if !ok {
		c.notifier.Notify(SeverityWarn, ErrNoActionAvailable.Error())
		return nil, ErrNoActionAvailable
	}

	updated, err := c.api.UpdateOrderStatus(ctx, o.ID, next)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}

	c.notifier.Notify(SeveritySuccess, fmt.Sprintf("order %s is now %s", updated.Number, updated.Status.Label()))
	return updated, nil
}

// Track fetches the public view of an order by its number.
func (c *Controller) Track(ctx context.Context, number string) (*client.TrackedOrder, error) {
	tracked, err := c.api.TrackOrder(ctx, number)
	if err != nil {
		c.notifier.Notify(SeverityError, err.Error())
		return nil, err
	}
	return tracked, nil
}
