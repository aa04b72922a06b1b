package ports

import (
	"context"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
)

// RentalRequest is a renter's proposed hold on a car over [Start, End).
type RentalRequest struct {
	CarID    string
	RenterID string
	Start    time.Time
	End      time.Time
}

// ListRentalsResult is one page of a renter's bookings.
type ListRentalsResult struct {
	Rentals    []*domain.Booking
	Pagination pagination.Envelope
}

// RentalService is the Availability Arbiter.
type RentalService interface {
	RequestRental(ctx context.Context, req RentalRequest) (*domain.Booking, error)
	ListRentals(ctx context.Context, renterID string, page, pageSize int) (*ListRentalsResult, error)
}
