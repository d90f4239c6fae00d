package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/auth"
)

type contextKey string

const userContextKey contextKey = "current_user"

// CurrentUser returns the authenticated account stored by the Authenticator
// middleware.
func CurrentUser(r *http.Request) (*account.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*account.User)
	return user, ok
}

// Authenticator verifies the bearer token and loads the live account, so a
// deleted or demoted user loses access as soon as the record changes.
func Authenticator(tokens *auth.TokenManager, accounts account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := accounts.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, account.ErrNotFound) {
					respondWithError(w, http.StatusUnauthorized, "Account no longer exists")
					return
				}
				log.Error().Err(err).Stringer("user_id", claims.UserID).Msg("Failed to load account for token")
				respondWithError(w, http.StatusInternalServerError, "Failed to authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated callers whose role is not listed.
func RequireRoles(roles ...account.Role) func(http.Handler) http.Handler {
	allowed := make(map[account.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !allowed[user.Role] {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
