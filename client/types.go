package client

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

// Session is the login response. The token, role and username are the only
// state worth persisting between runs; the cart never is.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Approved bool      `json:"is_approved"`
}

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	ImageURL      string    `json:"image_url,omitempty"`
}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

type Order struct {
	ID              uuid.UUID     `json:"id"`
	Number          string        `json:"order_number"`
	ClientName      string        `json:"client_name"`
	Phone           string        `json:"phone"`
	DeliveryAddress string        `json:"delivery_address"`
	Items           []OrderItem   `json:"items"`
	TotalPrice      int64         `json:"total_price"`
	Status          order.Status  `json:"status"`
	DelivererID     uuid.NullUUID `json:"deliverer_id"`
	CreatedAt       time.Time     `json:"created_at"`
}

// TrackedOrder is the public tracking payload.
type TrackedOrder struct {
	Number           string       `json:"order_number"`
	Status           order.Status `json:"status"`
	StatusLabel      string       `json:"status_label"`
	ClientName       string       `json:"client_name"`
	DeliveryAddress  string       `json:"delivery_address"`
	DelivererEnRoute bool         `json:"deliverer_en_route"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Approved bool    `json:"is_approved"`
	Password *string `json:"password,omitempty"`
}

type ProductRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	ImageURL      string `json:"image_url,omitempty"`
}

type CreateOrderRequest struct {
	ClientName      string      `json:"client_name"`
	Phone           string      `json:"phone"`
	DeliveryAddress string      `json:"delivery_address"`
	Items           []OrderItem `json:"items"`
	TotalPrice      int64       `json:"total_price"`
}
