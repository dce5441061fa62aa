package repository

import (
	"context"
	"errors"

	"cinereserve/backend/internal/film/domain"
)

// ErrNotFound is returned by seat operations when the film does not exist.
// Plain lookups report absence as (nil, nil) instead.
var ErrNotFound = errors.New("film not found")

// Repository is the film catalog store.
type Repository interface {
	// List returns the full catalog ordered by id.
	List(ctx context.Context) ([]*domain.Film, error)
	// GetByID returns the film for id, or nil if not found.
	GetByID(ctx context.Context, id int64) (*domain.Film, error)
	// ReserveSeats atomically decrements the film's available seats.
	// Returns ErrNotFound for an unknown film and
	// domain.ErrInsufficientSeats when fewer than seats remain.
	ReserveSeats(ctx context.Context, id int64, seats int) error
	// ReleaseSeats returns previously reserved seats to the film. Used to
	// compensate when recording the reservation fails after the decrement.
	ReleaseSeats(ctx context.Context, id int64, seats int) error
	// Create persists the film and returns it with its assigned ID.
	Create(ctx context.Context, f *domain.Film) (*domain.Film, error)
}
