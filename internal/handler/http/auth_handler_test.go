package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
)

func newAuthTestRouter(accounts account.Service) (*chi.Mux, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewAuthHandler(accounts, tokens)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, tokens
}

func TestAuthHandler_Login(t *testing.T) {
	alice := &account.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		Role:     account.RoleClient,
		Approved: true,
	}

	tests := []struct {
		name             string
		form             url.Values
		authenticateFunc func(ctx context.Context, username, password string) (*account.User, error)
		wantStatus       int
		wantDetail       string
	}{
		{
			name: "success",
			form: url.Values{"username": {"alice"}, "password": {"secret"}},
			authenticateFunc: func(ctx context.Context, username, password string) (*account.User, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "secret", password)
				return alice, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing_password",
			form:       url.Values{"username": {"alice"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "bad_credentials",
			form: url.Values{"username": {"alice"}, "password": {"wrong"}},
			authenticateFunc: func(ctx context.Context, username, password string) (*account.User, error) {
				return nil, account.ErrInvalidCredentials
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: account.ErrInvalidCredentials.Error(),
		},
		{
			name: "unapproved_account",
			form: url.Values{"username": {"bob"}, "password": {"secret"}},
			authenticateFunc: func(ctx context.Context, username, password string) (*account.User, error) {
				return nil, account.ErrNotApproved
			},
			wantStatus: http.StatusForbidden,
			wantDetail: account.ErrNotApproved.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tokens := newAuthTestRouter(&mockAccountService{authenticateFunc: tt.authenticateFunc})

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var payload TokenResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
				assert.Equal(t, "bearer", payload.TokenType)
				assert.Equal(t, "alice", payload.Username)
				assert.Equal(t, "client", payload.Role)

				claims, err := tokens.Verify(payload.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, alice.ID, claims.UserID)
				return
			}

			if tt.wantDetail != "" {
				var payload ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
				assert.Equal(t, tt.wantDetail, payload.Detail)
			}
		})
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signupFunc func(ctx context.Context, user *account.User, password string) (*account.User, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"username":"bob","email":"bob@example.com","role":"deliverer","password":"longenough"}`,
			signupFunc: func(ctx context.Context, user *account.User, password string) (*account.User, error) {
				assert.Equal(t, account.RoleDeliverer, user.Role)
				user.ID = uuid.Must(uuid.NewV4())
				user.Approved = false
				return user, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short_password",
			body:       `{"username":"bob","email":"bob@example.com","role":"client","password":"short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid_email",
			body:       `{"username":"bob","email":"not-an-email","role":"client","password":"longenough"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate_username",
			body: `{"username":"bob","email":"bob@example.com","role":"client","password":"longenough"}`,
			signupFunc: func(ctx context.Context, user *account.User, password string) (*account.User, error) {
				return nil, account.ErrUsernameExists
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newAuthTestRouter(&mockAccountService{signupFunc: tt.signupFunc})

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
