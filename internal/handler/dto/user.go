package dto

import "github.com/shortleaf/shortleaf/internal/model"

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest represents the request body for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Password is optional; when present it must be confirmed.
type UpdateProfileRequest struct {
	Name                 string `json:"name"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

// ProfileResponse represents the profile-update response body.
type ProfileResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// SupportRequest represents the request body for a support message.
type SupportRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
