package repository

import (
	"context"

	"cinereserve/backend/internal/film/domain"
	"cinereserve/backend/internal/storage/jsonfile"
)

const filmsFile = "films.json"

type filmRecord struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	Showtime       string `json:"showtime"`
	AvailableSeats int    `json:"available_seats"`
}

// JSONFileRepository stores the catalog in films.json under the data
// directory.
type JSONFileRepository struct {
	store *jsonfile.Store
}

// NewJSONFileRepository returns a film repository backed by store.
func NewJSONFileRepository(store *jsonfile.Store) *JSONFileRepository {
	return &JSONFileRepository{store: store}
}

// List returns the full catalog ordered by id.
func (r *JSONFileRepository) List(ctx context.Context) ([]*domain.Film, error) {
	var out []*domain.Film
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		out = make([]*domain.Film, len(records))
		for i := range records {
			out[i] = filmToDomain(&records[i])
		}
		return nil
	})
	return out, err
}

// GetByID returns the film for id, or nil if not found.
func (r *JSONFileRepository) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	var found *domain.Film
	err := r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].ID == id {
				found = filmToDomain(&records[i])
				return nil
			}
		}
		return nil
	})
	return found, err
}

// ReserveSeats atomically decrements available seats under the store lock.
func (r *JSONFileRepository) ReserveSeats(ctx context.Context, id int64, seats int) error {
	return r.adjustSeats(id, -seats)
}

// ReleaseSeats returns seats to the film under the store lock.
func (r *JSONFileRepository) ReleaseSeats(ctx context.Context, id int64, seats int) error {
	return r.adjustSeats(id, seats)
}

// Create persists the film, assigning the next free integer ID.
func (r *JSONFileRepository) Create(ctx context.Context, f *domain.Film) (*domain.Film, error) {
	var created *domain.Film
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
		rec := filmRecord{
			ID:             nextID,
			Title:          f.Title,
			Genre:          f.Genre,
			Showtime:       f.Showtime,
			AvailableSeats: f.AvailableSeats,
		}
		records = append(records, rec)
		if err := r.store.Write(filmsFile, records); err != nil {
			return err
		}
		created = filmToDomain(&rec)
		return nil
	})
	return created, err
}

func (r *JSONFileRepository) adjustSeats(id int64, delta int) error {
	return r.store.Do(func() error {
		records, err := r.load()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].ID != id {
				continue
			}
			next := records[i].AvailableSeats + delta
			if next < 0 {
				return domain.ErrInsufficientSeats
			}
			records[i].AvailableSeats = next
			return r.store.Write(filmsFile, records)
		}
		return ErrNotFound
	})
}

func (r *JSONFileRepository) load() ([]filmRecord, error) {
	var records []filmRecord
	if err := r.store.Read(filmsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func filmToDomain(rec *filmRecord) *domain.Film {
	return &domain.Film{
		ID:             rec.ID,
		Title:          rec.Title,
		Genre:          rec.Genre,
		Showtime:       rec.Showtime,
		AvailableSeats: rec.AvailableSeats,
	}
}
