package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shortleaf/shortleaf/internal/auth"
	"github.com/shortleaf/shortleaf/internal/model"
	"github.com/shortleaf/shortleaf/internal/repository"
)

// Account service errors.
var (
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet the strength policy")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	maxNameLen     = 255
	maxEmailLength = 255
)

// UserService handles registration, authentication and account lifecycle.
type UserService struct {
	store       UserStore
	sessions    SessionStore
	passwordMin int
}

// NewUserService creates a new UserService.
// passwordMin is the minimum accepted password length.
func NewUserService(store UserStore, sessions SessionStore, passwordMin int) *UserService {
	if passwordMin <= 0 {
		passwordMin = 8
	}
	return &UserService{
		store:       store,
		sessions:    sessions,
		passwordMin: passwordMin,
	}
}

// RegisterInput defines input for account registration.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Register creates a new account and establishes a session for it.
// Returns the created user and the session token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, "", ErrInvalidName
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", err
	}

	if err := s.checkPassword(input.Password, input.PasswordConfirmation); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and establishes a session.
// The same ErrInvalidCredentials covers unknown email and wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Logout destroys the session behind the given token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Authenticate resolves a session token to its user.
// Returns ErrUserNotFound if the session or the account is gone.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Stale session for a deleted account.
			_ = s.sessions.Destroy(ctx, token)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// UpdateProfileInput defines input for profile updates.
type UpdateProfileInput struct {
	Name                 string
	Password             string
	PasswordConfirmation string
}

// UpdateProfile updates the user's name, and re-hashes the password only if
// a non-empty new value is supplied.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, input UpdateProfileInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLen {
		return nil, ErrInvalidName
	}
	user.Name = name

	if input.Password != "" {
		if err := s.checkPassword(input.Password, input.PasswordConfirmation); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the authenticated user's own account.
// The session is terminated and its token rotated before the row is deleted;
// owned links are removed by the storage cascade.
func (s *UserService) DeleteAccount(ctx context.Context, user *model.User, token string) error {
	// Rotate then destroy: the original token is unusable even if the
	// row deletion fails midway.
	if rotated, err := s.sessions.Rotate(ctx, token); err == nil {
		_ = s.sessions.Destroy(ctx, rotated)
	} else {
		_ = s.sessions.Destroy(ctx, token)
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

// checkPassword enforces the strength policy and confirmation match.
func (s *UserService) checkPassword(password, confirmation string) error {
	if len(password) < s.passwordMin {
		return ErrWeakPassword
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// normalizeEmail lowercases and validates an email address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLength {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}
