package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenLen is the number of random bytes in a session token.
const sessionTokenLen = 32

// NewSessionToken returns an opaque, URL-safe session token.
// The plaintext token travels in the cookie; only its digest is stored.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
