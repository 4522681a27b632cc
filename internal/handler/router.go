package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shortleaf/shortleaf/internal/middleware"
)

// RouterConfig bundles the dependencies for the HTTP router.
type RouterConfig struct {
	Accounts  *AccountHandler
	Links     *LinkHandler
	Redirects *RedirectHandler
	Support   *SupportHandler
	Health    *HealthHandler

	Sessions middleware.Authenticator
	Logger   *slog.Logger

	AllowedOrigins []string
	MaxBodySize    int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. CORS runs before any handler so non-listed
	// origins are rejected outright.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", cfg.Accounts.Register)
		r.Post("/login", cfg.Accounts.Login)
		r.Get("/user", cfg.Accounts.CurrentUser)
		r.Post("/support", cfg.Support.Send)

		// Session-protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions, cfg.Logger))

			r.Post("/logout", cfg.Accounts.Logout)
			r.Put("/user", cfg.Accounts.UpdateProfile)
			r.Delete("/user", cfg.Accounts.DeleteAccount)

			r.Route("/short-links", func(r chi.Router) {
				r.Get("/", cfg.Links.List)
				r.Post("/", cfg.Links.Create)
				r.Put("/{id}", cfg.Links.Update)
				r.Patch("/{id}", cfg.Links.Update)
				r.Delete("/{id}", cfg.Links.Delete)
			})
		})
	})

	// Public redirect routes. /r/{shortCode} is the canonical form QR
	// codes point at.
	r.Get("/r/{shortCode}", cfg.Redirects.Redirect)
	r.Get("/{shortCode}", cfg.Redirects.Redirect)

	// 404 and 405 handlers
	h := New()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
