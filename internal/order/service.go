package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInsufficientStock    = errors.New("insufficient stock for ordered product")
	ErrDelivererNotFound    = errors.New("deliverer not found")
	ErrNotADeliverer        = errors.New("the selected user is not a deliverer")
	ErrDelivererNotApproved = errors.New("the selected deliverer is not approved yet")
	ErrNotAssignedToYou     = errors.New("you can only update orders assigned to you")
	ErrStatusNotPermitted   = errors.New("not enough permissions to update order status")
	ErrTotalMismatch        = errors.New("total price does not match order items")
)

// UserDirectory is the slice of the account service the order workflow needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.User, error)
}

type Service interface {
	Create(ctx context.Context, client *account.User, input *Order) (*Order, error)
	ListForUser(ctx context.Context, caller *account.User) ([]Order, error)
	ListPending(ctx context.Context) ([]Order, error)
	Assign(ctx context.Context, orderID, delivererID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, caller *account.User, orderID uuid.UUID, next Status) (*Order, error)
	Track(ctx context.Context, number string) (*Order, error)
}

type service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) Service {
	return &service{repo: repo, users: users}
}

// newOrderNumber builds the client-visible order number. Generated here
// rather than by the caller so numbers stay a backend responsibility.
func newOrderNumber() (string, error) {
	suffix, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate order number suffix: %w", err)
	}
	return fmt.Sprintf("CMD-%d-%X", time.Now().UnixMilli(), suffix.Bytes()[:3]), nil
}

// Create validates the order, freezes unit prices, decrements stock and
// stores the order in pending_validation. Any client-supplied number or
// status is overwritten.
func (s *service) Create(ctx context.Context, client *account.User, input *Order) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrEmptyOrder
	}

	var total int64
	for i := range input.Items {
		item := &input.Items[i]

		if item.ProductID == uuid.Nil {
			return nil, errors.New("service: product id in order item cannot be nil")
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("service: order item quantity for product %s must be greater than zero", item.ProductID)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("service: order item unit price for product %s cannot be negative", item.ProductID)
		}

		item.ID = uuid.Nil
		item.OrderID = uuid.Nil
		total += int64(item.Quantity) * item.UnitPrice
	}

	// A zero declared total means the client did not price the order;
	// only a non-zero declaration is checked against the computed total.
	if input.TotalPrice != 0 && input.TotalPrice != total {
		log.Warn().Int64("declared", input.TotalPrice).Int64("computed", total).Msg("service: order total mismatch")
		return nil, ErrTotalMismatch
	}

	number, err := newOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	input.ID = uuid.Nil
	input.Number = number
	input.ClientID = uuid.NullUUID{UUID: client.ID, Valid: true}
	input.Status = StatusPendingValidation
	input.TotalPrice = total
	input.DelivererID = uuid.NullUUID{}

	if err := s.repo.Create(ctx, input); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", input.ID).Str("order_number", input.Number).Int64("total", total).Msg("service: order created")
	return input, nil
}

// ListForUser returns the orders visible to the caller: clients see their
// own, deliverers their assigned ones, staff see everything.
func (s *service) ListForUser(ctx context.Context, caller *account.User) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	switch caller.Role {
	case account.RoleClient:
		orders, err = s.repo.ListByClient(ctx, caller.ID)
	case account.RoleDeliverer:
		orders, err = s.repo.ListByDeliverer(ctx, caller.ID)
	default:
		orders, err = s.repo.List(ctx)
	}
	if err != nil {
		log.Error().Err(err).Stringer("user_id", caller.ID).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListPending(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListUnassigned(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list pending orders")
		return nil, fmt.Errorf("service: failed to list pending orders: %w", err)
	}
	return orders, nil
}

// Assign binds an approved deliverer to the order and promotes a pending
// order to validated.
func (s *service) Assign(ctx context.Context, orderID, delivererID uuid.UUID) (*Order, error) {
	deliverer, err := s.users.GetByID(ctx, delivererID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrDelivererNotFound
		}
		log.Error().Err(err).Stringer("deliverer_id", delivererID).Msg("service: failed to fetch deliverer")
		return nil, fmt.Errorf("service: failed to fetch deliverer: %w", err)
	}
	if deliverer.Role != account.RoleDeliverer {
		return nil, ErrNotADeliverer
	}
	if !deliverer.Approved {
		return nil, ErrDelivererNotApproved
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order for assignment")
		return nil, fmt.Errorf("service: failed to fetch order for assignment: %w", err)
	}

	nextStatus := current.Status
	if current.Status == StatusPendingValidation {
		nextStatus = StatusValidated
	}

	updated, err := s.repo.Assign(ctx, orderID, delivererID, nextStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to assign order")
		return nil, fmt.Errorf("service: failed to assign order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("deliverer_id", delivererID).Stringer("status", nextStatus).Msg("service: order assigned")
	return updated, nil
}

// UpdateStatus drives the state machine. Only staff and deliverers may
// change a status, deliverers only on their assigned orders; the
// transition table is authoritative for everyone.
func (s *service) UpdateStatus(ctx context.Context, caller *account.User, orderID uuid.UUID, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("service: unknown order status %q", next)
	}

	if !caller.Role.Staff() && caller.Role != account.RoleDeliverer {
		log.Warn().Stringer("user_id", caller.ID).Stringer("role", caller.Role).Msg("service: status update forbidden for role")
		return nil, ErrStatusNotPermitted
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order for status update")
		return nil, fmt.Errorf("service: failed to fetch order for status update: %w", err)
	}

	if caller.Role == account.RoleDeliverer && (!current.DelivererID.Valid || current.DelivererID.UUID != caller.ID) {
		return nil, ErrNotAssignedToYou
	}

	if current.Status == next {
		log.Info().Stringer("order_id", orderID).Stringer("status", next).Msg("service: order status already set, nothing to do")
		return current, nil
	}

	if !CanTransition(current.Status, next) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", next).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", next).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	current.Status = next
	log.Info().Stringer("order_id", orderID).Stringer("new_status", next).Msg("service: order status updated")
	return current, nil
}

// Track looks an order up by its public number. No authentication and no
// mutation capability.
func (s *service) Track(ctx context.Context, number string) (*Order, error) {
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_number", number).Msg("service: failed to track order")
		return nil, fmt.Errorf("service: failed to track order: %w", err)
	}
	return order, nil
}
