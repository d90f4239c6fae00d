package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type AuthHandler struct {
	accounts account.Service
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func NewAuthHandler(accounts account.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/signup", h.handleSignup)
}

// handleLogin exchanges form-encoded credentials for a bearer token. This is
// the one endpoint that is not JSON-bodied.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Login failed")
		respondDomainError(w, err, "Failed to log in")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("Failed to issue token")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    user.Username,
		Role:        user.Role.String(),
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var requestPayload SignupRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode signup payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	domainUser := account.User{
		Username: requestPayload.Username,
		Email:    requestPayload.Email,
		Role:     account.Role(requestPayload.Role),
	}

	created, err := h.accounts.Signup(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Str("username", requestPayload.Username).Msg("Failed to sign up user")
		respondDomainError(w, err, "Failed to sign up")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}
