// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/shortleaf/shortleaf/internal/model"
)

// LinkStore defines the persistence operations the link service needs.
// Implemented by repository.Repository.
type LinkStore interface {
	CreateLink(ctx context.Context, link *model.ShortLink) error
	GetLinkByID(ctx context.Context, id string) (*model.ShortLink, error)
	GetLinkByShortURL(ctx context.Context, shortURL string) (*model.ShortLink, error)
	ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.ShortLink, error)
	CountLinksByOwner(ctx context.Context, ownerID string) (int, error)
	OwnerHasURL(ctx context.Context, ownerID, url, excludeID string) (bool, error)
	ShortURLExists(ctx context.Context, shortURL, excludeID string) (bool, error)
	UpdateLink(ctx context.Context, link *model.ShortLink) error
	DeleteLink(ctx context.Context, id string) error
	ResolveAndCount(ctx context.Context, shortURL string) (string, error)
}

// UserStore defines the persistence operations the account service needs.
// Implemented by repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// SessionStore establishes and destroys authenticated sessions.
// Implemented by cache.SessionStore.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	UserID(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
	Rotate(ctx context.Context, token string) (string, error)
}
