package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shortleaf/shortleaf/internal/auth"
	"github.com/shortleaf/shortleaf/internal/handler/dto"
	"github.com/shortleaf/shortleaf/internal/service"
)

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

// AccountHandler handles registration, login and account lifecycle.
type AccountHandler struct {
	svc     *service.UserService
	cookies CookieOptions
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.UserService, cookies CookieOptions, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:     svc,
		cookies: cookies,
		logger:  logger,
	}
}

// Register handles POST /api/register.
// On success the account is created, a session is established and 204 is
// returned with the session cookie set.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.handleAccountError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	h.setSessionCookie(w, token)
	w.WriteHeader(http.StatusNoContent)
}

// Login handles POST /api/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleAccountError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	h.setSessionCookie(w, token)
	w.WriteHeader(http.StatusNoContent)
}

// Logout handles POST /api/logout. Requires a session.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser handles GET /api/user.
// No session is required; an anonymous request gets a null body.
func (h *AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.svc.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user. Requires a session.
// Name is updated unconditionally; password only when supplied.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
		Name:                 req.Name,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.handleAccountError(w, err)
		return
	}

	h.logger.Info("profile_updated", "user_id", updated.ID)

	writeJSON(w, http.StatusOK, dto.ProfileResponse{
		Message: "Profile updated successfully",
		User:    updated,
	})
}

// DeleteAccount handles DELETE /api/user. Requires a session.
// A user can delete only their own account; the session token is rotated
// and destroyed, and owned links are removed with the account.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	token := auth.TokenFromContext(r.Context())

	if err := h.svc.DeleteAccount(r.Context(), user, token); err != nil {
		h.handleAccountError(w, err)
		return
	}

	h.logger.Info("account_deleted", "user_id", user.ID)

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Account deleted successfully",
	})
}

// handleAccountError maps account service errors to HTTP responses.
func (h *AccountHandler) handleAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidName):
		writeValidationError(w, "name", "The name field is required.")
	case errors.Is(err, service.ErrInvalidEmail):
		writeValidationError(w, "email", "The email must be a valid email address.")
	case errors.Is(err, service.ErrEmailTaken):
		writeValidationError(w, "email", "The email has already been taken.")
	case errors.Is(err, service.ErrWeakPassword):
		writeValidationError(w, "password", "The password does not meet the strength policy.")
	case errors.Is(err, service.ErrPasswordMismatch):
		writeValidationError(w, "password", "The password confirmation does not match.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeValidationError(w, "email", "These credentials do not match our records.")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// setSessionCookie attaches the session cookie to the response.
func (h *AccountHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookies.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func (h *AccountHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
