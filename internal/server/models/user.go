// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that owns stored files. IsAdmin grants access to the
// administrative operations (user listing, admin toggling, user deletion).
type User struct {
	ID           int64
	UserName     string
	Email        string
	FirstName    string
	PasswordHash []byte
	IsAdmin      bool
	CreatedAt    time.Time
}
