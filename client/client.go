// Package client is the Go consumer of the ManiocAGRI REST API. It attaches
// the bearer token when one is set and normalizes every non-2xx response
// into an *APIError carrying the backend's human-readable detail message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

// APIError is the single error type for backend-reported failures.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ClearToken drops the bearer token (logout).
func (c *Client) ClearToken() {
	c.token = ""
}

// Authenticated reports whether a bearer token is set.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// decodeError turns a non-2xx response into an *APIError, preferring the
// JSON detail field and falling back to the HTTP status text.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, "application/json", body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// Login exchanges form-encoded credentials for a bearer token and installs
// it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}

	c.token = session.AccessToken
	return &session, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/auth/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/v1/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/api/v1/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/users/"+id.String(), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ApproveUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/users/"+id.String()+"/approve", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/users/"+id.String(), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/api/v1/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	var product Product
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/products", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*Product, error) {
	var product Product
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/products/"+id.String(), req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/products/"+id.String(), nil, nil)
}

// UploadProductImage sends the image as a multipart form, the one non-JSON
// request body besides login.
func (c *Client) UploadProductImage(ctx context.Context, id uuid.UUID, imagePath string) (*Product, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("client: failed to open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("client: failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("client: failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("client: failed to finalize multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/products/"+id.String()+"/image", writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.getJSON(ctx, "/api/v1/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var created Order
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/orders", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListPendingOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.getJSON(ctx, "/api/v1/orders/pending", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ListDeliverers(ctx context.Context) ([]User, error) {
	var deliverers []User
	if err := c.getJSON(ctx, "/api/v1/orders/deliverers", &deliverers); err != nil {
		return nil, err
	}
	return deliverers, nil
}

func (c *Client) AssignOrder(ctx context.Context, orderID, delivererID uuid.UUID) (*Order, error) {
	payload := map[string]uuid.UUID{"deliverer_id": delivererID}

	var assigned Order
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/assign", payload, &assigned); err != nil {
		return nil, err
	}
	return &assigned, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status order.Status) (*Order, error) {
	payload := map[string]string{"status": status.String()}

	var updated Order
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// TrackOrder looks an order up by its public number. Works without a token.
func (c *Client) TrackOrder(ctx context.Context, number string) (*TrackedOrder, error) {
	var tracked TrackedOrder
	if err := c.getJSON(ctx, "/api/v1/orders/track/"+url.PathEscape(number), &tracked); err != nil {
		return nil, err
	}
	return &tracked, nil
}
