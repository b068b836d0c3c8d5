// Package domain defines the core entities of the Markhaven bookmark server.
package domain

import "time"

// User represents an authenticated user account in the system.
// A user exclusively owns all of their bookmarks, tags, and collections.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Password-reset state. ResetTokenHash is a hash of the emailed token;
	// both fields are nil when no reset is pending.
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// HasPendingReset reports whether a password reset is pending and unexpired.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil &&
		u.ResetTokenExpiresAt != nil &&
		now.Before(*u.ResetTokenExpiresAt)
}

// Principal is the authenticated caller identity threaded through service
// calls. It is produced once by the authentication boundary and passed by
// value; services never consult request context for identity.
type Principal struct {
	UserID string
	Email  string
}

// DefaultTagNames is the fixed set of tags seeded for every new account.
var DefaultTagNames = []string{"read-later", "favorites"}
