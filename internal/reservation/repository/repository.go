package repository

import (
	"context"

	"cinereserve/backend/internal/reservation/domain"
)

// Repository is the reservation persistence store.
type Repository interface {
	// ListByUser returns the user's reservations ordered by creation time.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error)
	// Create persists the reservation and returns it with its assigned ID.
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}
