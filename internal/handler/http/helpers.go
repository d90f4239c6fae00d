package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

// ErrorResponse is the wire shape of every failure: a single human-readable
// detail message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Detail: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		parts = append(parts, fmt.Sprintf("field %s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func respondValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithError(w, http.StatusBadRequest, formatValidationErrors(validationErrors))
		return
	}
	log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrDelivererNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrUsernameExists),
		errors.Is(err, account.ErrEmailExists),
		errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, account.ErrNotApproved),
		errors.Is(err, account.ErrAdminProtected),
		errors.Is(err, catalog.ErrNotPermitted),
		errors.Is(err, order.ErrNotAssignedToYou),
		errors.Is(err, order.ErrStatusNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrCannotDeleteSelf),
		errors.Is(err, account.ErrInvalidRole),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrNotADeliverer),
		errors.Is(err, order.ErrDelivererNotApproved),
		errors.Is(err, order.ErrTotalMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError surfaces known business errors verbatim and hides
// internals behind a fallback message.
func respondDomainError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		respondWithError(w, code, fallback)
		return
	}
	respondWithError(w, code, err.Error())
}
