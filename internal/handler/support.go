package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/shortleaf/shortleaf/internal/handler/dto"
)

// minSupportMessageLen is the minimum accepted support message length.
const minSupportMessageLen = 10

// SupportSender delivers a support request. Implemented by mail.Mailer.
type SupportSender interface {
	SendSupport(ctx context.Context, name, email, message string) error
}

// SupportHandler handles support-contact requests.
type SupportHandler struct {
	sender SupportSender
	logger *slog.Logger
}

// NewSupportHandler creates a new SupportHandler.
// sender may be nil when mail delivery is not configured.
func NewSupportHandler(sender SupportSender, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{
		sender: sender,
		logger: logger,
	}
}

// Send handles POST /api/support.
func (h *SupportHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req dto.SupportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 255 {
		writeValidationError(w, "name", "The name field is required.")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || len(req.Email) > 255 {
		writeValidationError(w, "email", "The email must be a valid email address.")
		return
	}
	if len(strings.TrimSpace(req.Message)) < minSupportMessageLen {
		writeValidationError(w, "message", "The message must be at least 10 characters.")
		return
	}

	if h.sender == nil {
		writeError(w, http.StatusServiceUnavailable, "MAIL_DISABLED", "Support mail is not configured")
		return
	}

	if err := h.sender.SendSupport(r.Context(), name, req.Email, req.Message); err != nil {
		h.logger.Error("support_mail_failed", "error", err)
		writeError(w, http.StatusBadGateway, "MAIL_FAILED", "Failed to send support email")
		return
	}

	h.logger.Info("support_mail_sent", "from", req.Email)

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Support email sent successfully",
	})
}
