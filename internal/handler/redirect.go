package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shortleaf/shortleaf/internal/service"
)

// RedirectHandler handles public redirect requests.
type RedirectHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.LinkService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		svc:    svc,
		logger: logger,
	}
}

// Redirect handles GET /{shortCode} and GET /r/{shortCode}.
// Resolves the code, records the click and issues a 302 to the target.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
		return
	}

	start := time.Now()

	target, err := h.svc.Resolve(r.Context(), shortCode)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			h.logger.Info("redirect_not_found",
				"short_url", shortCode,
				"duration_ms", float64(duration.Microseconds())/1000,
			)
			writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
			return
		}

		h.logger.Error("redirect_error",
			"short_url", shortCode,
			"error", err,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("redirect_success",
		"short_url", shortCode,
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	// Security headers for the redirect response
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")

	http.Redirect(w, r, target, http.StatusFound)
}
