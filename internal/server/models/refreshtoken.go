package models

import "time"

// RefreshToken is an opaque long-lived token persisted per user session.
type RefreshToken struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
