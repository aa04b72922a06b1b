package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var _ ports.RentalLedger = (*RentalLedger)(nil)

// RentalLedger keeps bookings grouped by car. Create rejects an overlapping
// booking with domain.ErrRentalConflict, mirroring the Postgres exclusion
// constraint.
type RentalLedger struct {
	mu    sync.RWMutex
	byCar map[string][]*domain.Booking
}

func NewRentalLedger() *RentalLedger {
	return &RentalLedger{byCar: make(map[string][]*domain.Booking)}
}

func (l *RentalLedger) FindOverlapping(_ context.Context, carID string, start, end time.Time) ([]*domain.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*domain.Booking
	for _, b := range l.byCar[carID] {
		if b.OverlapsWith(start, end) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (l *RentalLedger) Create(_ context.Context, booking *domain.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.byCar[booking.CarID] {
		if b.OverlapsWith(booking.RentStartedAt, booking.RentEndedAt) {
			return domain.ErrRentalConflict
		}
	}
	clone := *booking
	l.byCar[booking.CarID] = append(l.byCar[booking.CarID], &clone)
	return nil
}

func (l *RentalLedger) ListByUser(_ context.Context, userID string, offset, limit int) ([]*domain.Booking, int64, error) {
	l.mu.RLock()
	var mine []*domain.Booking
	for _, bookings := range l.byCar {
		for _, b := range bookings {
			if b.UserID == userID {
				clone := *b
				mine = append(mine, &clone)
			}
		}
	}
	l.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID < mine[j].ID
	})

	start, end := bounds(len(mine), offset, limit)
	return mine[start:end], int64(len(mine)), nil
}

// carsBookedAt returns the ids of cars with a booking covering t.
func (l *RentalLedger) carsBookedAt(t time.Time) map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	busy := make(map[string]bool)
	for carID, bookings := range l.byCar {
		for _, b := range bookings {
			if b.Covers(t) {
				busy[carID] = true
				break
			}
		}
	}
	return busy
}
