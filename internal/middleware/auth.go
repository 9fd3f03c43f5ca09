package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

// Auth returns a middleware that requires an active session. The
// session user is attached to the request context for handlers.
func Auth(repo *repository.Repository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := repo.GetSession(r.Context())
			if err != nil {
				if errors.Is(err, repository.ErrNoSession) {
					writeAuthError(w, http.StatusUnauthorized, "NO_SESSION", "authentication required")
					return
				}
				logger.Error("session lookup failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin sessions.
// Must be applied after Auth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.UserFromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "NO_SESSION", "authentication required")
				return
			}
			if !user.IsAdmin() {
				logger.Warn("admin route denied",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("user_id", user.ID),
				)
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}
