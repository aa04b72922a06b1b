package ports

import (
	"context"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// RentalLedger stores bookings. It is written only by the rental service.
type RentalLedger interface {
	// FindOverlapping returns the bookings of carID whose interval
	// overlaps [start, end).
	FindOverlapping(ctx context.Context, carID string, start, end time.Time) ([]*domain.Booking, error)

	// Create persists a booking. Stores that enforce non-overlap themselves
	// return domain.ErrRentalConflict on violation.
	Create(ctx context.Context, booking *domain.Booking) error

	// ListByUser returns one window of a renter's bookings and their total.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Booking, int64, error)
}

// CarLocker serialises rental decisions per car. Lock blocks until the car
// is held or ctx is done; the returned func releases it.
type CarLocker interface {
	Lock(ctx context.Context, carID string) (unlock func(), err error)
}
