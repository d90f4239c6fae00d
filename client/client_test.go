package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		if r.PostFormValue("username") != "alice" || r.PostFormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "incorrect username or password"})
			return
		}

		_ = json.NewEncoder(w).Encode(client.Session{
			AccessToken: "token-123",
			TokenType:   "bearer",
			Username:    "alice",
			Role:        "client",
		})
	}))
	defer server.Close()

	c := client.New(server.URL)

	t.Run("bad_credentials", func(t *testing.T) {
		_, err := c.Login(context.Background(), "alice", "wrong")
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "incorrect username or password", apiErr.Detail)
		assert.False(t, c.Authenticated())
	})

	t.Run("success_installs_token", func(t *testing.T) {
		session, err := c.Login(context.Background(), "alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "token-123", session.AccessToken)
		assert.Equal(t, "bearer", session.TokenType)
		assert.True(t, c.Authenticated())
	})
}

func TestClient_BearerTokenAttached(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]client.Product{})
	}))
	defer server.Close()

	c := client.New(server.URL)

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no Authorization header before login")

	c.SetToken("token-123")
	_, err = c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)

	c.ClearToken()
	_, err = c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "logout drops the Authorization header")
}

func TestClient_DecodeErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A non-JSON error body, e.g. from a proxy.
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	c := client.New(server.URL)

	_, err := c.ListProducts(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Detail)
}

func TestClient_CreateOrder(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req client.CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, productID, req.Items[0].ProductID)
		assert.Equal(t, int64(1500), req.TotalPrice)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(client.Order{
			ID:         uuid.Must(uuid.NewV4()),
			Number:     "CMD-1714000000000-A1B2C3",
			ClientName: req.ClientName,
			Items:      req.Items,
			TotalPrice: req.TotalPrice,
			Status:     order.StatusPendingValidation,
		})
	}))
	defer server.Close()

	c := client.New(server.URL)
	c.SetToken("token-123")

	created, err := c.CreateOrder(context.Background(), client.CreateOrderRequest{
		ClientName:      "Alice",
		Phone:           "+237600000000",
		DeliveryAddress: "Douala, Akwa",
		Items:           []client.OrderItem{{ProductID: productID, Quantity: 3, UnitPrice: 500}},
		TotalPrice:      1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "CMD-1714000000000-A1B2C3", created.Number)
	assert.Equal(t, order.StatusPendingValidation, created.Status)
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/v1/orders/"+orderID.String()+"/status", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "in_transit", payload["status"])

		_ = json.NewEncoder(w).Encode(client.Order{ID: orderID, Status: order.StatusInTransit})
	}))
	defer server.Close()

	c := client.New(server.URL)
	c.SetToken("token-123")

	updated, err := c.UpdateOrderStatus(context.Background(), orderID, order.StatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, order.StatusInTransit, updated.Status)
}

func TestClient_TrackOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/orders/track/CMD-1-A", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "tracking is public")

		_ = json.NewEncoder(w).Encode(client.TrackedOrder{
			Number:           "CMD-1-A",
			Status:           order.StatusInTransit,
			StatusLabel:      order.StatusInTransit.Label(),
			ClientName:       "Alice",
			DeliveryAddress:  "Douala, Akwa",
			DelivererEnRoute: true,
		})
	}))
	defer server.Close()

	c := client.New(server.URL)

	tracked, err := c.TrackOrder(context.Background(), "CMD-1-A")
	require.NoError(t, err)
	assert.Equal(t, order.StatusInTransit, tracked.Status)
	assert.True(t, tracked.DelivererEnRoute)
}

func TestClient_DeleteProductNoContent(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/products/"+productID.String(), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL)
	c.SetToken("token-123")

	assert.NoError(t, c.DeleteProduct(context.Background(), productID))
}
