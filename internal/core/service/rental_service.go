package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

type rentalService struct {
	cars   ports.CarRepository
	ledger ports.RentalLedger
	locker ports.CarLocker
	pages  pagination.Policy
	log    zerolog.Logger
	now    func() time.Time
}

// storedTimePrecision is the coarsest timestamp resolution among the stores.
const storedTimePrecision = time.Millisecond

// NewRentalService returns the Availability Arbiter. Every check-and-create
// for a car runs while holding locker's lock for that car.
func NewRentalService(
	cars ports.CarRepository,
	ledger ports.RentalLedger,
	locker ports.CarLocker,
	pages pagination.Policy,
	log zerolog.Logger,
) ports.RentalService {
	return &rentalService{
		cars:   cars,
		ledger: ledger,
		locker: locker,
		pages:  pages,
		log:    log,
		now:    time.Now,
	}
}

// RequestRental grants req unless the car already has a booking overlapping
// [req.Start, req.End).
func (s *rentalService) RequestRental(ctx context.Context, req ports.RentalRequest) (*domain.Booking, error) {
	// Mongo keeps milliseconds, so every store compares on that grid.
	req.Start = req.Start.Truncate(storedTimePrecision)
	req.End = req.End.Truncate(storedTimePrecision)
	if req.Start.IsZero() || req.End.IsZero() || !req.End.After(req.Start) {
		return nil, domain.InvalidInterval(req.Start, req.End)
	}

	// 1. Resolve the car.
	car, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, notFoundAs(err, "car", req.CarID)
	}

	// 2. Enter the per-car critical section.
	unlock, err := s.locker.Lock(ctx, car.ID)
	if err != nil {
		return nil, fmt.Errorf("request rental: lock car %s: %w", car.ID, err)
	}
	defer unlock()

	// 3. Reject on any overlapping booking. Stores may return a superset, so
	//    the predicate is applied here as well.
	existing, err := s.ledger.FindOverlapping(ctx, car.ID, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("request rental: find overlapping: %w", err)
	}
	for _, b := range existing {
		if b.CarID == car.ID && b.OverlapsWith(req.Start, req.End) {
			s.log.Debug().
				Str("car_id", car.ID).
				Str("booking_id", b.ID).
				Msg("rental denied: overlapping booking")
			return nil, domain.CarAlreadyRented(car)
		}
	}

	// 4. Persist. A store-level exclusion violation means another writer won.
	booking := &domain.Booking{
		ID:            uuid.NewString(),
		CarID:         car.ID,
		UserID:        req.RenterID,
		RentStartedAt: req.Start.UTC(),
		RentEndedAt:   req.End.UTC(),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.ledger.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrRentalConflict) {
			return nil, domain.CarAlreadyRented(car)
		}
		return nil, fmt.Errorf("request rental: create booking: %w", err)
	}

	s.log.Info().
		Str("car_id", car.ID).
		Str("user_id", req.RenterID).
		Str("booking_id", booking.ID).
		Time("start", booking.RentStartedAt).
		Time("end", booking.RentEndedAt).
		Msg("rental granted")

	return booking, nil
}

// ListRentals returns one page of renterID's bookings, newest first.
func (s *rentalService) ListRentals(ctx context.Context, renterID string, page, pageSize int) (*ports.ListRentalsResult, error) {
	page, pageSize = s.pages.Normalize(page, pageSize)
	window := s.pages.ComputeWindow(page, pageSize)

	rentals, total, err := s.ledger.ListByUser(ctx, renterID, window.Offset, window.Limit)
	if err != nil {
		return nil, err
	}
	if rentals == nil {
		rentals = []*domain.Booking{}
	}

	return &ports.ListRentalsResult{
		Rentals:    rentals,
		Pagination: s.pages.BuildEnvelope(total, page, pageSize),
	}, nil
}
