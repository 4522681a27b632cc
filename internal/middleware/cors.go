package middleware

import (
	"net/http"
	"strings"
)

// CORS response header values.
const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Origin, Content-Type, Authorization, X-Request-ID"
)

// CORS returns a middleware enforcing an exact-match origin allow-list.
//
// Requests without an Origin header are same-origin and pass through
// untouched. Requests from a non-listed origin are rejected with 403 before
// reaching any handler. Preflight OPTIONS requests from a listed origin get
// an explicit 200 with the allow headers; session cookies require
// Allow-Credentials, so the matched origin is echoed back, never "*".
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.ToLower(strings.TrimSpace(origin))] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Responses differ per Origin on every path out of here, the
			// rejection and the origin-less pass-through included, so
			// caches must always key on it.
			w.Header().Set("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !originSet[strings.ToLower(origin)] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"CORS not allowed"}`))
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
