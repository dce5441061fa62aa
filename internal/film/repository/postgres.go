package repository

import (
	"context"
	"database/sql"
	"errors"

	"cinereserve/backend/internal/film/domain"
)

// PostgresRepository stores the catalog in the films table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a film repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const filmColumns = "id, title, genre, showtime, available_seats"

// List returns the full catalog ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Film, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+filmColumns+" FROM films ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var films []*domain.Film
	for rows.Next() {
		var f domain.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Genre, &f.Showtime, &f.AvailableSeats); err != nil {
			return nil, err
		}
		films = append(films, &f)
	}
	return films, rows.Err()
}

// GetByID returns the film for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	var f domain.Film
	err := r.db.QueryRowContext(ctx,
		"SELECT "+filmColumns+" FROM films WHERE id = $1", id,
	).Scan(&f.ID, &f.Title, &f.Genre, &f.Showtime, &f.AvailableSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// ReserveSeats decrements available seats with a conditional update so two
// concurrent reservations cannot oversell the film.
func (r *PostgresRepository) ReserveSeats(ctx context.Context, id int64, seats int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE films SET available_seats = available_seats - $2
		 WHERE id = $1 AND available_seats >= $2`,
		id, seats)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	// The update matched nothing. Distinguish a missing film from one
	// without enough seats.
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrNotFound
	}
	return domain.ErrInsufficientSeats
}

// ReleaseSeats returns seats to the film.
func (r *PostgresRepository) ReleaseSeats(ctx context.Context, id int64, seats int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE films SET available_seats = available_seats + $2 WHERE id = $1",
		id, seats)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Create persists the film and returns it with the database-assigned ID.
func (r *PostgresRepository) Create(ctx context.Context, f *domain.Film) (*domain.Film, error) {
	created := *f
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO films (title, genre, showtime, available_seats)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		f.Title, f.Genre, f.Showtime, f.AvailableSeats,
	).Scan(&created.ID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
