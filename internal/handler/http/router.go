package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

// NewRouter assembles the /api/v1 surface. Public routes are login, signup,
// product listing and order tracking; everything else is behind the bearer
// token, with staff routes additionally role-gated.
func NewRouter(
	accounts account.Service,
	products catalog.Service,
	orders order.Service,
	tokens *auth.TokenManager,
	uploadDir string,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	authHandler := NewAuthHandler(accounts, tokens)
	userHandler := NewUserHandler(accounts)
	productHandler := NewProductHandler(products, uploadDir)
	orderHandler := NewOrderHandler(orders, accounts)

	staffOnly := RequireRoles(account.RoleAdmin, account.RoleManager)

	r.Route("/api/v1", func(api chi.Router) {
		authHandler.RegisterRoutes(api)
		productHandler.RegisterPublicRoutes(api)
		orderHandler.RegisterPublicRoutes(api)

		api.Group(func(g chi.Router) {
			g.Use(Authenticator(tokens, accounts))

			userHandler.RegisterRoutes(g, staffOnly)
			productHandler.RegisterRoutes(g)
			orderHandler.RegisterRoutes(g, staffOnly)
		})
	})

	return r
}
