package domain

import "errors"

// Film is one entry in the screening catalog.
type Film struct {
	ID             int64
	Title          string
	Genre          string
	Showtime       string
	AvailableSeats int
}

// ErrInsufficientSeats is returned by repositories when a reservation asks
// for more seats than the screening has left.
var ErrInsufficientSeats = errors.New("insufficient seats available")

// Validate validates the film for persistence.
func (f *Film) Validate() error {
	if f.Title == "" {
		return errors.New("title is required")
	}
	if f.AvailableSeats < 0 {
		return errors.New("available seats must not be negative")
	}
	return nil
}
