package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shortleaf/shortleaf/internal/auth"
)

// sessionKeyPrefix is the Redis key prefix for session entries.
const sessionKeyPrefix = "session:"

// ErrSessionNotFound indicates the token maps to no active session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists opaque session tokens in Redis.
// Keys are SHA256 digests of the token, values are user IDs.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore with the given session lifetime.
func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

// Create establishes a session for the user and returns the plaintext token.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return "", err
	}

	key := sessionKeyPrefix + auth.TokenDigest(token)
	if err := s.cache.client.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// UserID resolves a token to the owning user ID.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (s *SessionStore) UserID(ctx context.Context, token string) (string, error) {
	key := sessionKeyPrefix + auth.TokenDigest(token)

	userID, err := s.cache.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("load session: %w", err)
	}

	return userID, nil
}

// Destroy terminates the session for the given token.
// Destroying an already-absent session is not an error.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	key := sessionKeyPrefix + auth.TokenDigest(token)
	if err := s.cache.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Rotate invalidates the old token and issues a fresh one for the same user.
func (s *SessionStore) Rotate(ctx context.Context, token string) (string, error) {
	userID, err := s.UserID(ctx, token)
	if err != nil {
		return "", err
	}

	if err := s.Destroy(ctx, token); err != nil {
		return "", err
	}

	return s.Create(ctx, userID)
}
