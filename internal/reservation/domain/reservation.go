package domain

import (
	"errors"
	"time"
)

// Reservation status values. Reservations are confirmed immediately; there
// is no pending state in this system.
const StatusConfirmed = "confirmed"

// Reservation is a confirmed seat booking for one user and one film.
type Reservation struct {
	ID        int64
	FilmID    int64
	UserID    int64
	Seats     int
	Status    string
	CreatedAt time.Time

	// FilmTitle is filled in on reads for display; it is not persisted
	// on the reservation record itself.
	FilmTitle string
}

// MaxSeatsPerReservation bounds a single booking.
const MaxSeatsPerReservation = 10

// Validate validates the reservation for persistence.
func (r *Reservation) Validate() error {
	if r.FilmID <= 0 {
		return errors.New("film id is required")
	}
	if r.UserID <= 0 {
		return errors.New("user id is required")
	}
	if r.Seats < 1 || r.Seats > MaxSeatsPerReservation {
		return errors.New("seats must be between 1 and 10")
	}
	return nil
}
