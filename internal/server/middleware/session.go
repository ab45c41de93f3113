package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/authz"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/handlers"
)

// SessionResolver maps a session token to its user
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// SessionMiddleware resolves the session cookie and stores the user in the
// request context. Requests without a live session continue anonymously;
// a storage failure is a 500.
func SessionMiddleware(logger *slog.Logger, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := handlers.SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					next.ServeHTTP(w, r)
					return
				}
				logger.ErrorContext(r.Context(), "failed to resolve session", slog.Any("error", err))
				handlers.SendError(logger, w, "internal server error", http.StatusInternalServerError)
				return
			}

			logger.DebugContext(r.Context(), "session resolved",
				slog.Int64("user_id", user.ID),
				slog.String("username", user.Username))

			next.ServeHTTP(w, r.WithContext(handlers.ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if handlers.GetUser(r.Context()) == nil {
				handlers.SendError(logger, w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := handlers.GetUser(r.Context())
			if user == nil {
				handlers.SendError(logger, w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !authz.IsAdmin(user) {
				logger.WarnContext(r.Context(), "admin route forbidden", slog.Int64("user_id", user.ID))
				handlers.SendError(logger, w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
