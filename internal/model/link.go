// Package model defines domain entities for the application.
package model

import "time"

// MaxLinksPerUser is the quota of concurrently owned links per account.
const MaxLinksPerUser = 15

// ShortLink represents a shortened URL owned by a user.
type ShortLink struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	Clicks    int64     `json:"clicks"`
	QRCode    string    `json:"qr_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether the link belongs to the given user.
func (l *ShortLink) OwnedBy(userID string) bool {
	return l.OwnerID == userID
}
