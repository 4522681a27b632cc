package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shortleaf/shortleaf/internal/auth"
	"github.com/shortleaf/shortleaf/internal/handler/dto"
	"github.com/shortleaf/shortleaf/internal/model"
	"github.com/shortleaf/shortleaf/internal/service"
)

// LinkHandler handles HTTP requests for short-link operations.
// All routes require a session; the current user comes from the context.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/short-links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	links, err := h.svc.List(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if links == nil {
		links = []*model.ShortLink{}
	}
	writeJSON(w, http.StatusOK, links)
}

// Create handles POST /api/short-links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.svc.Create(r.Context(), user, service.CreateLinkInput{
		URL:      req.URL,
		Title:    req.Title,
		ShortURL: req.ShortURL,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"link_id", link.ID,
		"short_url", link.ShortURL,
		"owner_id", user.ID,
		"has_custom_code", req.ShortURL != "",
	)

	writeJSON(w, http.StatusCreated, link)
}

// Update handles PUT and PATCH /api/short-links/{id}.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	var req dto.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.svc.Update(r.Context(), user, id, service.UpdateLinkInput{
		URL:      req.URL,
		Title:    req.Title,
		ShortURL: req.ShortURL,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_updated",
		"link_id", link.ID,
		"short_url", link.ShortURL,
		"owner_id", user.ID,
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Link updated successfully",
	})
}

// Delete handles DELETE /api/short-links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), user, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id, "owner_id", user.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Link deleted successfully",
	})
}

// handleServiceError maps link service errors to HTTP responses.
// Ownership failures are reported as 403 even though the record exists,
// so callers learn nothing extra about other users' links.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not authorised to modify this link.")
	case errors.Is(err, service.ErrInvalidURL):
		writeValidationError(w, "url", "The url must be a valid URL.")
	case errors.Is(err, service.ErrURLTooLong):
		writeValidationError(w, "url", "The url exceeds the maximum length.")
	case errors.Is(err, service.ErrDuplicateURL):
		writeValidationError(w, "url", "You already have a short link for this URL.")
	case errors.Is(err, service.ErrInvalidShortURL):
		writeValidationError(w, "short_url", "The short url must be 2 to 8 alphanumeric characters.")
	case errors.Is(err, service.ErrShortURLTaken):
		writeValidationError(w, "short_url", "The short url has already been taken.")
	case errors.Is(err, service.ErrQuotaExceeded):
		writeValidationError(w, "url", "You have reached the maximum of 15 short links.")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
