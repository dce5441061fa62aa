package domain

import (
	"errors"
	"time"
)

// User is the credential record for one subject. PasswordHash and
// PasswordSalt are set once at signup and never rotated; the salt is
// unique per record.
type User struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash []byte
	PasswordSalt []byte
	CreatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing
// the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if len(u.PasswordHash) == 0 || len(u.PasswordSalt) == 0 {
		return errors.New("password hash and salt are required")
	}
	return nil
}
