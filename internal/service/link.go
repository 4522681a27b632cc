package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/shortleaf/shortleaf/internal/model"
	"github.com/shortleaf/shortleaf/internal/qr"
	"github.com/shortleaf/shortleaf/internal/repository"
)

// Link service errors.
var (
	ErrInvalidURL      = errors.New("invalid target URL")
	ErrURLTooLong      = errors.New("target URL too long")
	ErrInvalidShortURL = errors.New("invalid short URL format")
	ErrShortURLTaken   = errors.New("short URL already in use")
	ErrDuplicateURL    = errors.New("owner already has a link for this URL")
	ErrQuotaExceeded   = errors.New("link quota exceeded")
	ErrLinkNotFound    = errors.New("link not found")
	ErrNotOwner        = errors.New("link belongs to another user")
)

// Short code format: 2-8 alphanumeric characters.
var shortURLPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,8}$`)

const (
	maxURLLength = 2048
	maxTitleLen  = 255

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	minCodeLen   = 2
	maxCodeLen   = 8

	// maxGenerateAttempts caps collision retries per length before the
	// generator widens to the next length.
	maxGenerateAttempts = 1000
)

// LinkService handles short-link business logic.
type LinkService struct {
	store   LinkStore
	baseURL string
}

// NewLinkService creates a new LinkService.
func NewLinkService(store LinkStore, baseURL string) *LinkService {
	return &LinkService{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the configured base URL.
func (s *LinkService) BaseURL() string {
	return s.baseURL
}

// List returns all links owned by the user in insertion order.
func (s *LinkService) List(ctx context.Context, owner *model.User) ([]*model.ShortLink, error) {
	links, err := s.store.ListLinksByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	URL      string
	Title    string
	ShortURL string
}

// Create validates input and persists a new short link for the owner.
func (s *LinkService) Create(ctx context.Context, owner *model.User, input CreateLinkInput) (*model.ShortLink, error) {
	if err := s.validateURL(input.URL); err != nil {
		return nil, err
	}
	input.Title = truncateTitle(input.Title)

	count, err := s.store.CountLinksByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}
	if count >= model.MaxLinksPerUser {
		return nil, ErrQuotaExceeded
	}

	hasURL, err := s.store.OwnerHasURL(ctx, owner.ID, input.URL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate URL: %w", err)
	}
	if hasURL {
		return nil, ErrDuplicateURL
	}

	shortURL := input.ShortURL
	if shortURL != "" {
		if !shortURLPattern.MatchString(shortURL) {
			return nil, ErrInvalidShortURL
		}
		taken, err := s.store.ShortURLExists(ctx, shortURL, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check short URL: %w", err)
		}
		if taken {
			return nil, ErrShortURLTaken
		}
	} else {
		shortURL, err = s.generateShortURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short URL: %w", err)
		}
	}

	now := time.Now().UTC()
	link := &model.ShortLink{
		ID:        ulid.Make().String(),
		OwnerID:   owner.ID,
		Title:     input.Title,
		URL:       input.URL,
		ShortURL:  shortURL,
		Clicks:    0,
		QRCode:    qr.Derive(s.baseURL, shortURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		// The unique indexes are the authority; a lost check-then-insert
		// race surfaces here as the same errors the pre-checks produce.
		switch {
		case errors.Is(err, repository.ErrShortURLExists):
			return nil, ErrShortURLTaken
		case errors.Is(err, repository.ErrDuplicateURL):
			return nil, ErrDuplicateURL
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return link, nil
}

// UpdateLinkInput defines partial updates to a link. Nil fields are left
// untouched.
type UpdateLinkInput struct {
	URL      *string
	Title    *string
	ShortURL *string
}

// Update applies a partial update to a link owned by the user.
// Existence is checked before ownership: unknown IDs yield ErrLinkNotFound,
// someone else's link yields ErrNotOwner.
func (s *LinkService) Update(ctx context.Context, owner *model.User, linkID string, input UpdateLinkInput) (*model.ShortLink, error) {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if !link.OwnedBy(owner.ID) {
		return nil, ErrNotOwner
	}

	if input.Title != nil {
		link.Title = truncateTitle(*input.Title)
	}

	if input.URL != nil {
		if err := s.validateURL(*input.URL); err != nil {
			return nil, err
		}
		hasURL, err := s.store.OwnerHasURL(ctx, owner.ID, *input.URL, link.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate URL: %w", err)
		}
		if hasURL {
			return nil, ErrDuplicateURL
		}
		link.URL = *input.URL
	}

	if input.ShortURL != nil && *input.ShortURL != link.ShortURL {
		shortURL := *input.ShortURL
		if !shortURLPattern.MatchString(shortURL) {
			return nil, ErrInvalidShortURL
		}
		taken, err := s.store.ShortURLExists(ctx, shortURL, link.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check short URL: %w", err)
		}
		if taken {
			return nil, ErrShortURLTaken
		}
		link.ShortURL = shortURL
		// qr_code always reflects the current short code.
		link.QRCode = qr.Derive(s.baseURL, shortURL)
	}

	link.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateLink(ctx, link); err != nil {
		switch {
		case errors.Is(err, repository.ErrShortURLExists):
			return nil, ErrShortURLTaken
		case errors.Is(err, repository.ErrDuplicateURL):
			return nil, ErrDuplicateURL
		case errors.Is(err, repository.ErrLinkNotFound):
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// Delete removes a link owned by the user. Hard delete, no tombstone.
func (s *LinkService) Delete(ctx context.Context, owner *model.User, linkID string) error {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if !link.OwnedBy(owner.ID) {
		return ErrNotOwner
	}

	if err := s.store.DeleteLink(ctx, link.ID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	return nil
}

// Resolve maps a short code to its target URL and records the visit.
// The click increment is atomic at the storage layer.
func (s *LinkService) Resolve(ctx context.Context, shortURL string) (string, error) {
	target, err := s.store.ResolveAndCount(ctx, shortURL)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return "", ErrLinkNotFound
		}
		return "", err
	}
	return target, nil
}

// truncateTitle caps a title at maxTitleLen bytes without splitting a rune,
// so the stored string stays valid UTF-8.
func truncateTitle(title string) string {
	if len(title) <= maxTitleLen {
		return title
	}
	cut := maxTitleLen
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

// validateURL validates a target URL.
func (s *LinkService) validateURL(raw string) error {
	if raw == "" {
		return ErrInvalidURL
	}

	if len(raw) > maxURLLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	// Must have a host
	if parsed.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

// generateShortURL produces a unique random short code.
//
// Length is drawn uniformly from [2,8]; candidates are drawn until one is
// free. After maxGenerateAttempts collisions at a given length the generator
// widens to the next length, so termination is bounded even under heavy
// saturation of the shorter lengths.
func (s *LinkService) generateShortURL(ctx context.Context) (string, error) {
	length, err := cryptoRandInt(maxCodeLen - minCodeLen + 1)
	if err != nil {
		return "", err
	}
	length += minCodeLen

	for ; length <= maxCodeLen; length++ {
		for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
			code, err := randomCode(length)
			if err != nil {
				return "", err
			}
			exists, err := s.store.ShortURLExists(ctx, code, "")
			if err != nil {
				return "", err
			}
			if !exists {
				return code, nil
			}
		}
	}

	return "", errors.New("short code space exhausted")
}

// randomCode generates a random code of the given length using crypto/rand.
func randomCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		idx, err := cryptoRandInt(len(codeAlphabet))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx]
	}
	return string(b), nil
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
