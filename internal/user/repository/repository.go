package repository

import (
	"context"
	"errors"

	"cinereserve/backend/internal/user/domain"
)

// ErrDuplicateUsername is returned by Create when the username is already
// taken. Create is the uniqueness authority: a GetByUsername pre-check can
// race with a concurrent signup, so only Create's answer is reliable.
var ErrDuplicateUsername = errors.New("username already taken")

// Repository is the credential persistence store. Implementations return
// (nil, nil) for lookups that find nothing; errors are reserved for
// storage failures.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByUsername returns the user for username, or nil if not found.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create persists the user and returns it with its assigned ID.
	// Returns ErrDuplicateUsername if the username already has a record.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}
