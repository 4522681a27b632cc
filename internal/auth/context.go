package auth

import (
	"context"

	"github.com/shortleaf/shortleaf/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the context key for the authenticated user.
	userContextKey contextKey = "current_user"
	// tokenContextKey is the context key for the session token.
	tokenContextKey contextKey = "session_token"
)

// ContextWithUser adds the authenticated user and session token to the context.
func ContextWithUser(ctx context.Context, user *model.User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

// UserFromContext retrieves the authenticated user from the context.
// Returns nil if the request carries no valid session.
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// TokenFromContext retrieves the session token from the context.
// Returns empty string if the request carries no valid session.
func TokenFromContext(ctx context.Context) string {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
