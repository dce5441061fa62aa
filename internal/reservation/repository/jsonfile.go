package repository

import (
	"context"
	"time"

	"cinereserve/backend/internal/reservation/domain"
	"cinereserve/backend/internal/storage/jsonfile"
)

const reservationsFile = "reservations.json"

type reservationRecord struct {
	ID        int64     `json:"id"`
	FilmID    int64     `json:"film_id"`
	UserID    int64     `json:"user_id"`
	Seats     int       `json:"seats"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// JSONFileRepository stores reservations in reservations.json under the
// data directory.
type JSONFileRepository struct {
	store *jsonfile.Store
}

// NewJSONFileRepository returns a reservation repository backed by store.
func NewJSONFileRepository(store *jsonfile.Store) *JSONFileRepository {
	return &JSONFileRepository{store: store}
}

// ListByUser returns the user's reservations ordered by creation time.
func (r *JSONFileRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].UserID == userID {
				out = append(out, reservationToDomain(&records[i]))
			}
		}
		return nil
	})
	return out, err
}

// Create persists the reservation, assigning the next free integer ID.
func (r *JSONFileRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	var created *domain.Reservation
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		nextID := int64(1)
		for i := range records {
			if records[i].ID >= nextID {
				nextID = records[i].ID + 1
			}
		}
		rec := reservationRecord{
			ID:        nextID,
			FilmID:    res.FilmID,
			UserID:    res.UserID,
			Seats:     res.Seats,
			Status:    res.Status,
			CreatedAt: res.CreatedAt,
		}
		records = append(records, rec)
		if err := r.store.Write(reservationsFile, records); err != nil {
			return err
		}
		created = reservationToDomain(&rec)
		return nil
	})
	return created, err
}

func (r *JSONFileRepository) load() ([]reservationRecord, error) {
	var records []reservationRecord
	if err := r.store.Read(reservationsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func reservationToDomain(rec *reservationRecord) *domain.Reservation {
	return &domain.Reservation{
		ID:        rec.ID,
		FilmID:    rec.FilmID,
		UserID:    rec.UserID,
		Seats:     rec.Seats,
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
	}
}
