package types

import "time"

// Account represents a registered author in the system.
// It contains identity, profile, and audit metadata.
type Account struct {
	// ID is the unique identifier of the account.
	ID int `json:"id" db:"id"`

	// Handle is the unique public name chosen by the author. It is
	// denormalized onto posts and comments for display.
	Handle string `json:"handle" db:"handle"`

	// Email is the account's email address, unique across accounts and
	// used as the login credential.
	Email string `json:"email" db:"email"`

	// Bio is optional free-form biography text.
	Bio string `json:"bio,omitempty" db:"bio"`

	// PasswordHash stores the bcrypt hash of the account's password.
	// This field is never exposed in API responses and never holds
	// plaintext once persisted.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
