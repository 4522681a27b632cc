package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/shortleaf/shortleaf/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrShortURLExists = errors.New("short URL already exists")
	ErrDuplicateURL   = errors.New("owner already has a link for this URL")
)

// Constraint names from the short_links migration.
const (
	shortURLConstraint = "short_links_short_url_key"
	ownerURLConstraint = "short_links_owner_id_url_key"
)

// linkUniqueError maps a unique violation to the matching sentinel error.
// Returns nil if err is not a unique violation on short_links.
func linkUniqueError(err error) error {
	switch name := violatedConstraint(err); {
	case name == shortURLConstraint:
		return ErrShortURLExists
	case name == ownerURLConstraint:
		return ErrDuplicateURL
	case strings.Contains(name, "short_url"):
		return ErrShortURLExists
	case name != "":
		return ErrDuplicateURL
	}
	return nil
}

// CreateLink inserts a new short link into the database.
func (r *Repository) CreateLink(ctx context.Context, link *model.ShortLink) error {
	query := `
		INSERT INTO short_links (id, owner_id, title, url, short_url, clicks, qr_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.OwnerID,
		link.Title,
		link.URL,
		link.ShortURL,
		link.Clicks,
		link.QRCode,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if uniqueErr := linkUniqueError(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.ShortLink, error) {
	query := `
		SELECT id, owner_id, title, url, short_url, clicks, qr_code, created_at, updated_at
		FROM short_links
		WHERE id = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// GetLinkByShortURL retrieves a link by its short code.
func (r *Repository) GetLinkByShortURL(ctx context.Context, shortURL string) (*model.ShortLink, error) {
	query := `
		SELECT id, owner_id, title, url, short_url, clicks, qr_code, created_at, updated_at
		FROM short_links
		WHERE short_url = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, shortURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by short URL: %w", err)
	}

	return link, nil
}

// ListLinksByOwner retrieves all links owned by a user in insertion order.
func (r *Repository) ListLinksByOwner(ctx context.Context, ownerID string) ([]*model.ShortLink, error) {
	query := `
		SELECT id, owner_id, title, url, short_url, clicks, qr_code, created_at, updated_at
		FROM short_links
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*model.ShortLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// CountLinksByOwner returns the number of links owned by a user.
func (r *Repository) CountLinksByOwner(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM short_links WHERE owner_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}

	return count, nil
}

// OwnerHasURL checks whether the owner already has a link to the given URL.
// excludeID skips one record, for update paths.
func (r *Repository) OwnerHasURL(ctx context.Context, ownerID, url, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM short_links WHERE owner_id = $1 AND url = $2 AND id <> $3)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, ownerID, url, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check owner URL: %w", err)
	}

	return exists, nil
}

// ShortURLExists checks whether a short code is already taken.
// excludeID skips one record, so a link may keep its own code on update.
func (r *Repository) ShortURLExists(ctx context.Context, shortURL, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM short_links WHERE short_url = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, shortURL, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short URL existence: %w", err)
	}

	return exists, nil
}

// UpdateLink updates a link's mutable fields.
func (r *Repository) UpdateLink(ctx context.Context, link *model.ShortLink) error {
	query := `
		UPDATE short_links
		SET title = $2, url = $3, short_url = $4, qr_code = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Title,
		link.URL,
		link.ShortURL,
		link.QRCode,
		link.UpdatedAt,
	)

	if err != nil {
		if uniqueErr := linkUniqueError(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// DeleteLink removes a link permanently.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	query := `DELETE FROM short_links WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ResolveAndCount resolves a short code to its target URL, incrementing the
// click counter in place. The increment happens in the same statement so
// concurrent resolves never lose updates.
func (r *Repository) ResolveAndCount(ctx context.Context, shortURL string) (string, error) {
	query := `
		UPDATE short_links
		SET clicks = clicks + 1
		WHERE short_url = $1
		RETURNING url
	`

	var url string
	err := r.pool.QueryRow(ctx, query, shortURL).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrLinkNotFound
		}
		return "", fmt.Errorf("failed to resolve short URL: %w", err)
	}

	return url, nil
}

// scanLink scans a single row into a ShortLink model.
func scanLink(row pgx.Row) (*model.ShortLink, error) {
	var link model.ShortLink
	err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.Title,
		&link.URL,
		&link.ShortURL,
		&link.Clicks,
		&link.QRCode,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	return &link, err
}
