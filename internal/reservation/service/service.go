package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	filmdomain "cinereserve/backend/internal/film/domain"
	filmrepo "cinereserve/backend/internal/film/repository"
	"cinereserve/backend/internal/reservation/domain"
)

// ErrFilmNotFound is returned when a reservation names an unknown film.
var ErrFilmNotFound = errors.New("film not found")

// ErrInvalidReservation wraps validation failures on the requested booking.
var ErrInvalidReservation = errors.New("invalid reservation")

// FilmStore is the slice of the film repository the reservation service
// needs.
type FilmStore interface {
	GetByID(ctx context.Context, id int64) (*filmdomain.Film, error)
	ReserveSeats(ctx context.Context, id int64, seats int) error
	ReleaseSeats(ctx context.Context, id int64, seats int) error
}

// ReservationStore is the slice of the reservation repository the service
// needs.
type ReservationStore interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// Service books seats and lists a user's reservations.
type Service struct {
	films        FilmStore
	reservations ReservationStore
	nowF         func() time.Time
}

// NewService builds a reservation service. A nil now defaults to time.Now.
func NewService(films FilmStore, reservations ReservationStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{films: films, reservations: reservations, nowF: now}
}

// Create books seats seats on film filmID for user userID. Seats are
// decremented before the record is written; if the write fails the seats
// are released again on a best-effort basis.
func (s *Service) Create(ctx context.Context, userID, filmID int64, seats int) (*domain.Reservation, error) {
	res := &domain.Reservation{
		FilmID:    filmID,
		UserID:    userID,
		Seats:     seats,
		Status:    domain.StatusConfirmed,
		CreatedAt: s.nowF().UTC(),
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReservation, err)
	}

	if err := s.films.ReserveSeats(ctx, filmID, seats); err != nil {
		if errors.Is(err, filmrepo.ErrNotFound) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}

	created, err := s.reservations.Create(ctx, res)
	if err != nil {
		// The seats are already held. Give them back so the catalog does
		// not leak capacity; a failure here leaves the count off by seats.
		_ = s.films.ReleaseSeats(ctx, filmID, seats)
		return nil, err
	}

	if f, ferr := s.films.GetByID(ctx, filmID); ferr == nil && f != nil {
		created.FilmTitle = f.Title
	}
	return created, nil
}

// ListByUser returns the user's reservations with film titles filled in
// for display.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error) {
	out, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := map[int64]string{}
	for _, res := range out {
		title, ok := titles[res.FilmID]
		if !ok {
			f, err := s.films.GetByID(ctx, res.FilmID)
			if err != nil {
				return nil, err
			}
			if f != nil {
				title = f.Title
			}
			titles[res.FilmID] = title
		}
		res.FilmTitle = title
	}
	return out, nil
}
