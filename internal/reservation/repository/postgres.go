package repository

import (
	"context"
	"database/sql"

	"cinereserve/backend/internal/reservation/domain"
)

// PostgresRepository stores reservations in the reservations table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a reservation repository that uses the
// given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the user's reservations ordered by creation time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, film_id, user_id, seats, status, created_at
		 FROM reservations WHERE user_id = $1 ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.FilmID, &res.UserID, &res.Seats, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// Create persists the reservation and returns it with the
// database-assigned ID.
func (r *PostgresRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	created := *res
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reservations (film_id, user_id, seats, status, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		res.FilmID, res.UserID, res.Seats, res.Status, res.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
