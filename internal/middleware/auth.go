package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shortleaf/shortleaf/internal/auth"
	"github.com/shortleaf/shortleaf/internal/model"
)

// Authenticator resolves a session token to its user.
// Implemented by service.UserService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// SessionCookieName is the cookie the auth middleware reads.
const SessionCookieName = "shortleaf_session"

// RequireSession returns a middleware that authenticates requests via the
// session cookie. The resolved user and token are injected into the request
// context; requests without a valid session get 401.
func RequireSession(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeAuthError(w)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				logger.Warn("authentication failed",
					slog.String("reason", "invalid_session"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthenticated.","code":"UNAUTHORIZED"}`))
}
