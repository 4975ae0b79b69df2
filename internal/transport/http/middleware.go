package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	dErrors "goggins/pkg/domain-errors"
)

// SessionCookie is the cookie carrying the JWT session token.
const SessionCookie = "session"

// TokenValidator validates a session token and returns the user id inside.
type TokenValidator interface {
	UserID(tokenString string) (uuid.UUID, error)
}

type contextKeyUserID struct{}

// UserIDFrom retrieves the authenticated user id from the context.
func UserIDFrom(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(contextKeyUserID{}).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// RequireSession authenticates requests via the session cookie and stores
// the user id in the request context.
func RequireSession(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
				return
			}

			userID, err := validator.UserID(cookie.Value)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "rejected session token", "error", err)
				}
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUserID{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
