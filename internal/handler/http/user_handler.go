package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Role     string  `json:"role" validate:"required"`
	Approved bool    `json:"is_approved"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type UserHandler struct {
	accounts account.Service
	validate *validator.Validate
}

func NewUserHandler(accounts account.Service) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the user admin surface. The router is expected to be
// staff-gated already, except /users/me which only needs authentication.
func (h *UserHandler) RegisterRoutes(router chi.Router, staffOnly func(http.Handler) http.Handler) {
	router.Get("/users/me", h.handleCurrentUser)

	router.Group(func(r chi.Router) {
		r.Use(staffOnly)
		r.Get("/users", h.handleListUsers)
		r.Post("/users", h.handleCreateUser)
		r.Patch("/users/{id}", h.handleUpdateUser)
		r.Patch("/users/{id}/approve", h.handleApproveUser)
		r.Delete("/users/{id}", h.handleDeleteUser)
	})
}

func (h *UserHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondDomainError(w, err, "Failed to list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest

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

	domainUser := account.User{
		Username: requestPayload.Username,
		Email:    requestPayload.Email,
		Role:     account.Role(requestPayload.Role),
	}

	created, err := h.accounts.Create(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Str("username", requestPayload.Username).Msg("Failed to create user")
		respondDomainError(w, err, "Failed to create user")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateUserRequest

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

	role := account.Role(requestPayload.Role)
	if !role.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	domainUser := account.User{
		ID:       userID,
		Username: requestPayload.Username,
		Email:    requestPayload.Email,
		Role:     role,
		Approved: requestPayload.Approved,
	}

	var newPassword string
	if requestPayload.Password != nil {
		newPassword = *requestPayload.Password
	}

	if err := h.accounts.Update(r.Context(), &domainUser, newPassword); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to update user")
		respondDomainError(w, err, "Failed to update user")
		return
	}

	respondWithJSON(w, http.StatusOK, domainUser)
}

func (h *UserHandler) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	approved, err := h.accounts.Approve(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to approve user")
		respondDomainError(w, err, "Failed to approve user")
		return
	}

	respondWithJSON(w, http.StatusOK, approved)
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	actor, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.accounts.Delete(r.Context(), actor, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to delete user")
		respondDomainError(w, err, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
