package domain

import (
	"errors"
	"time"
)

// ErrRentalConflict is returned by a Rental Ledger whose storage rejected a
// booking because it overlaps an existing one for the same car.
var ErrRentalConflict = errors.New("rental overlaps an existing booking")

// Booking records that a renter holds a car over [RentStartedAt, RentEndedAt).
type Booking struct {
	ID            string    `json:"id" bson:"_id"`
	CarID         string    `json:"carId" bson:"car_id"`
	UserID        string    `json:"userId" bson:"user_id"`
	RentStartedAt time.Time `json:"rentStartedAt" bson:"rent_started_at"`
	RentEndedAt   time.Time `json:"rentEndedAt" bson:"rent_ended_at"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share at least one instant. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// OverlapsWith reports whether b overlaps the proposed [start,end).
func (b *Booking) OverlapsWith(start, end time.Time) bool {
	return Overlaps(b.RentStartedAt, b.RentEndedAt, start, end)
}

// Covers reports whether t falls inside the booking.
func (b *Booking) Covers(t time.Time) bool {
	return !t.Before(b.RentStartedAt) && t.Before(b.RentEndedAt)
}
