package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

type mockOrderService struct {
	createFunc       func(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error)
	listForUserFunc  func(ctx context.Context, caller *account.User) ([]order.Order, error)
	listPendingFunc  func(ctx context.Context) ([]order.Order, error)
	assignFunc       func(ctx context.Context, orderID, delivererID uuid.UUID) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, caller *account.User, orderID uuid.UUID, next order.Status) (*order.Order, error)
	trackFunc        func(ctx context.Context, number string) (*order.Order, error)
}

func (m *mockOrderService) Create(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error) {
	return m.createFunc(ctx, client, input)
}

func (m *mockOrderService) ListForUser(ctx context.Context, caller *account.User) ([]order.Order, error) {
	return m.listForUserFunc(ctx, caller)
}

func (m *mockOrderService) ListPending(ctx context.Context) ([]order.Order, error) {
	return m.listPendingFunc(ctx)
}

func (m *mockOrderService) Assign(ctx context.Context, orderID, delivererID uuid.UUID) (*order.Order, error) {
	return m.assignFunc(ctx, orderID, delivererID)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, caller *account.User, orderID uuid.UUID, next order.Status) (*order.Order, error) {
	return m.updateStatusFunc(ctx, caller, orderID, next)
}

func (m *mockOrderService) Track(ctx context.Context, number string) (*order.Order, error) {
	return m.trackFunc(ctx, number)
}

type mockAccountService struct {
	signupFunc                 func(ctx context.Context, user *account.User, password string) (*account.User, error)
	createFunc                 func(ctx context.Context, user *account.User, password string) (*account.User, error)
	authenticateFunc           func(ctx context.Context, username, password string) (*account.User, error)
	getByIDFunc                func(ctx context.Context, id uuid.UUID) (*account.User, error)
	listFunc                   func(ctx context.Context) ([]account.User, error)
	listApprovedDeliverersFunc func(ctx context.Context) ([]account.User, error)
	updateFunc                 func(ctx context.Context, user *account.User, newPassword string) error
	approveFunc                func(ctx context.Context, id uuid.UUID) (*account.User, error)
	deleteFunc                 func(ctx context.Context, actor *account.User, id uuid.UUID) error
}

func (m *mockAccountService) Signup(ctx context.Context, user *account.User, password string) (*account.User, error) {
	return m.signupFunc(ctx, user, password)
}

func (m *mockAccountService) Create(ctx context.Context, user *account.User, password string) (*account.User, error) {
	return m.createFunc(ctx, user, password)
}

func (m *mockAccountService) Authenticate(ctx context.Context, username, password string) (*account.User, error) {
	return m.authenticateFunc(ctx, username, password)
}

func (m *mockAccountService) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAccountService) List(ctx context.Context) ([]account.User, error) {
	return m.listFunc(ctx)
}

func (m *mockAccountService) ListApprovedDeliverers(ctx context.Context) ([]account.User, error) {
	return m.listApprovedDeliverersFunc(ctx)
}

func (m *mockAccountService) Update(ctx context.Context, user *account.User, newPassword string) error {
	return m.updateFunc(ctx, user, newPassword)
}

func (m *mockAccountService) Approve(ctx context.Context, id uuid.UUID) (*account.User, error) {
	return m.approveFunc(ctx, id)
}

func (m *mockAccountService) Delete(ctx context.Context, actor *account.User, id uuid.UUID) error {
	return m.deleteFunc(ctx, actor, id)
}

// injectUser stands in for the Authenticator middleware in tests.
func injectUser(user *account.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newOrderTestRouter(orders order.Service, accounts account.Service, caller *account.User) *chi.Mux {
	handler := NewOrderHandler(orders, accounts)
	router := chi.NewRouter()
	handler.RegisterPublicRoutes(router)
	router.Group(func(r chi.Router) {
		if caller != nil {
			r.Use(injectUser(caller))
		}
		handler.RegisterRoutes(r, RequireRoles(account.RoleAdmin, account.RoleManager))
	})
	return router
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	clientUser := &account.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Role: account.RoleClient, Approved: true}
	productID := uuid.Must(uuid.NewV4())

	validBody := map[string]interface{}{
		"client_name":      "Alice",
		"phone":            "+237600000000",
		"delivery_address": "Douala, Akwa",
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 3, "unit_price": 500},
		},
		"total_price": 1500,
	}

	tests := []struct {
		name       string
		body       map[string]interface{}
		createFunc func(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error)
		wantStatus int
		wantDetail string
	}{
		{
			name: "created",
			body: validBody,
			createFunc: func(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error) {
				input.ID = uuid.Must(uuid.NewV4())
				input.Number = "CMD-1714000000000-A1B2C3"
				input.Status = order.StatusPendingValidation
				return input, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing_items",
			body: map[string]interface{}{
				"client_name":      "Alice",
				"phone":            "+237600000000",
				"delivery_address": "Douala, Akwa",
				"items":            []map[string]interface{}{},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing_phone",
			body: map[string]interface{}{
				"client_name":      "Alice",
				"delivery_address": "Douala, Akwa",
				"items": []map[string]interface{}{
					{"product_id": productID, "quantity": 1, "unit_price": 500},
				},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "insufficient_stock",
			body: validBody,
			createFunc: func(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error) {
				return nil, order.ErrInsufficientStock
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: order.ErrInsufficientStock.Error(),
		},
		{
			name: "total_mismatch",
			body: validBody,
			createFunc: func(ctx context.Context, client *account.User, input *order.Order) (*order.Order, error) {
				return nil, order.ErrTotalMismatch
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: order.ErrTotalMismatch.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrderService{createFunc: tt.createFunc}
			router := newOrderTestRouter(orders, &mockAccountService{}, clientUser)

			body, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantDetail != "" {
				var payload ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
				assert.Equal(t, tt.wantDetail, payload.Detail)
			}
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	deliverer := &account.User{ID: uuid.Must(uuid.NewV4()), Username: "bob", Role: account.RoleDeliverer, Approved: true}
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name             string
		caller           *account.User
		body             string
		updateStatusFunc func(ctx context.Context, caller *account.User, orderID uuid.UUID, next order.Status) (*order.Order, error)
		wantStatus       int
	}{
		{
			name: "advanced",
			body: `{"status":"in_transit"}`,
			updateStatusFunc: func(ctx context.Context, caller *account.User, oID uuid.UUID, next order.Status) (*order.Order, error) {
				assert.Equal(t, order.StatusInTransit, next)
				return &order.Order{ID: oID, Status: next}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown_status_rejected_before_service",
			body:       `{"status":"shipped"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid_transition",
			body: `{"status":"delivered"}`,
			updateStatusFunc: func(ctx context.Context, caller *account.User, oID uuid.UUID, next order.Status) (*order.Order, error) {
				return nil, order.ErrInvalidTransition
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "foreign_order_forbidden",
			body: `{"status":"in_transit"}`,
			updateStatusFunc: func(ctx context.Context, caller *account.User, oID uuid.UUID, next order.Status) (*order.Order, error) {
				return nil, order.ErrNotAssignedToYou
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "client_role_forbidden",
			caller: &account.User{ID: uuid.Must(uuid.NewV4()), Username: "alice", Role: account.RoleClient, Approved: true},
			body:   `{"status":"in_transit"}`,
			updateStatusFunc: func(ctx context.Context, caller *account.User, oID uuid.UUID, next order.Status) (*order.Order, error) {
				assert.Equal(t, account.RoleClient, caller.Role)
				return nil, order.ErrStatusNotPermitted
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := tt.caller
			if caller == nil {
				caller = deliverer
			}
			orders := &mockOrderService{updateStatusFunc: tt.updateStatusFunc}
			router := newOrderTestRouter(orders, &mockAccountService{}, caller)

			req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOrderHandler_StaffGate(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	delivererID := uuid.Must(uuid.NewV4())
	body := `{"deliverer_id":"` + delivererID.String() + `"}`

	tests := []struct {
		name       string
		caller     *account.User
		wantStatus int
	}{
		{
			name:       "client_forbidden",
			caller:     &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleClient},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "deliverer_forbidden",
			caller:     &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleDeliverer},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "manager_allowed",
			caller:     &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleManager},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin_allowed",
			caller:     &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleAdmin},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrderService{
				assignFunc: func(ctx context.Context, oID, dID uuid.UUID) (*order.Order, error) {
					assert.Equal(t, orderID, oID)
					assert.Equal(t, delivererID, dID)
					return &order.Order{ID: oID, Status: order.StatusValidated}, nil
				},
			}
			router := newOrderTestRouter(orders, &mockAccountService{}, tt.caller)

			req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String()+"/assign", bytes.NewReader([]byte(body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestOrderHandler_TrackOrder(t *testing.T) {
	delivererID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name          string
		number        string
		trackFunc     func(ctx context.Context, number string) (*order.Order, error)
		wantStatus    int
		wantEnRoute   bool
		wantStatusStr string
	}{
		{
			name:   "in_transit_with_deliverer",
			number: "CMD-1-A",
			trackFunc: func(ctx context.Context, number string) (*order.Order, error) {
				return &order.Order{
					Number:          number,
					ClientName:      "Alice",
					DeliveryAddress: "Douala, Akwa",
					Status:          order.StatusInTransit,
					DelivererID:     uuid.NullUUID{UUID: delivererID, Valid: true},
				}, nil
			},
			wantStatus:    http.StatusOK,
			wantEnRoute:   true,
			wantStatusStr: "in_transit",
		},
		{
			name:   "pending_without_deliverer",
			number: "CMD-2-B",
			trackFunc: func(ctx context.Context, number string) (*order.Order, error) {
				return &order.Order{Number: number, Status: order.StatusPendingValidation}, nil
			},
			wantStatus:    http.StatusOK,
			wantEnRoute:   false,
			wantStatusStr: "pending_validation",
		},
		{
			name:   "unknown_number",
			number: "CMD-0-0",
			trackFunc: func(ctx context.Context, number string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &mockOrderService{trackFunc: tt.trackFunc}
			// No authenticated caller: tracking is public.
			router := newOrderTestRouter(orders, &mockAccountService{}, nil)

			req := httptest.NewRequest(http.MethodGet, "/orders/track/"+tt.number, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var payload TrackedOrderResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
			assert.Equal(t, tt.number, payload.Number)
			assert.Equal(t, tt.wantStatusStr, payload.Status)
			assert.NotEmpty(t, payload.StatusLabel)
			assert.Equal(t, tt.wantEnRoute, payload.DelivererEnRoute)
		})
	}
}
