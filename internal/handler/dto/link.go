// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CreateLinkRequest represents the request body for creating a short link.
type CreateLinkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	ShortURL string `json:"short_url,omitempty"`
}

// UpdateLinkRequest represents the request body for updating a short link.
// Nil fields are left untouched.
type UpdateLinkRequest struct {
	URL      *string `json:"url,omitempty"`
	Title    *string `json:"title,omitempty"`
	ShortURL *string `json:"short_url,omitempty"`
}

// MessageResponse represents a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidationErrorResponse represents a 422 response with field-level messages.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// NewValidationError builds a single-field validation response.
func NewValidationError(field, message string) *ValidationErrorResponse {
	return &ValidationErrorResponse{
		Message: message,
		Errors:  map[string][]string{field: {message}},
	}
}
