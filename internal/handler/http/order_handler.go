package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64     `json:"unit_price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	ClientName      string             `json:"client_name" validate:"required"`
	Phone           string             `json:"phone" validate:"required"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalPrice      int64              `json:"total_price" validate:"gte=0"`
}

type AssignOrderRequest struct {
	DelivererID uuid.UUID `json:"deliverer_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TrackedOrderResponse is the public tracking payload: status and delivery
// details, no internal ids.
type TrackedOrderResponse struct {
	Number           string `json:"order_number"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
	ClientName       string `json:"client_name"`
	DeliveryAddress  string `json:"delivery_address"`
	DelivererEnRoute bool   `json:"deliverer_en_route"`
}

type OrderHandler struct {
	orders   order.Service
	accounts account.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service, accounts account.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		accounts: accounts,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes mounts order tracking, which needs no token.
func (h *OrderHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/orders/track/{number}", h.handleTrackOrder)
}

// RegisterRoutes mounts the authenticated order surface; validation and
// assignment are additionally staff-gated.
func (h *OrderHandler) RegisterRoutes(router chi.Router, staffOnly func(http.Handler) http.Handler) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)

	router.Group(func(r chi.Router) {
		r.Use(staffOnly)
		r.Get("/orders/pending", h.handleListPending)
		r.Get("/orders/deliverers", h.handleListDeliverers)
		r.Patch("/orders/{id}/assign", h.handleAssignOrder)
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	client, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	items := make([]order.Item, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		items = append(items, order.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	domainOrder := order.Order{
		ClientName:      requestPayload.ClientName,
		Phone:           requestPayload.Phone,
		DeliveryAddress: requestPayload.DeliveryAddress,
		Items:           items,
		TotalPrice:      requestPayload.TotalPrice,
	}

	created, err := h.orders.Create(r.Context(), client, &domainOrder)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create order")
		respondDomainError(w, err, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), caller)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondDomainError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListPending(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListPending(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pending orders")
		respondDomainError(w, err, "Failed to list pending orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListDeliverers(w http.ResponseWriter, r *http.Request) {
	deliverers, err := h.accounts.ListApprovedDeliverers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list deliverers")
		respondDomainError(w, err, "Failed to list deliverers")
		return
	}
	respondWithJSON(w, http.StatusOK, deliverers)
}

func (h *OrderHandler) handleAssignOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload AssignOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if requestPayload.DelivererID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "deliverer_id is required")
		return
	}

	assigned, err := h.orders.Assign(r.Context(), orderID, requestPayload.DelivererID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to assign order")
		respondDomainError(w, err, "Failed to assign order")
		return
	}

	respondWithJSON(w, http.StatusOK, assigned)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateOrderStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	next := order.Status(requestPayload.Status)
	if !next.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), caller, orderID, next)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Str("new_status", requestPayload.Status).Msg("Failed to update order status")
		respondDomainError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// handleTrackOrder is the public tracking endpoint. No authentication, no
// mutation capability.
func (h *OrderHandler) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "Order number is required")
		return
	}

	tracked, err := h.orders.Track(r.Context(), number)
	if err != nil {
		log.Warn().Err(err).Str("order_number", number).Msg("Failed to track order")
		respondDomainError(w, err, "Failed to track order")
		return
	}

	respondWithJSON(w, http.StatusOK, TrackedOrderResponse{
		Number:           tracked.Number,
		Status:           tracked.Status.String(),
		StatusLabel:      tracked.Status.Label(),
		ClientName:       tracked.ClientName,
		DeliveryAddress:  tracked.DeliveryAddress,
		DelivererEnRoute: tracked.DelivererID.Valid,
	})
}
