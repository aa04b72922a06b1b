package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var _ ports.CarRepository = (*CarRepository)(nil)

type CarRepository struct {
	mu      sync.RWMutex
	cars    map[string]*domain.Car
	rentals *RentalLedger
}

// NewCarRepository returns an empty catalog. rentals may be nil, in which
// case the AvailableAt filter matches every car.
func NewCarRepository(rentals *RentalLedger) *CarRepository {
	return &CarRepository{cars: make(map[string]*domain.Car), rentals: rentals}
}

func (r *CarRepository) FindByID(_ context.Context, id string) (*domain.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cars[id]
	if !ok {
		return nil, domain.RecordNotFound("car", id)
	}
	clone := *c
	return &clone, nil
}

func (r *CarRepository) List(_ context.Context, f ports.ListCarsFilter) ([]*domain.Car, int64, error) {
	var busy map[string]bool
	if !f.AvailableAt.IsZero() && r.rentals != nil {
		busy = r.rentals.carsBookedAt(f.AvailableAt)
	}

	r.mu.RLock()
	matched := make([]*domain.Car, 0, len(r.cars))
	for _, c := range r.cars {
		if f.Size != "" && c.Size != f.Size {
			continue
		}
		if busy[c.ID] {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := bounds(len(matched), f.Offset, f.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *CarRepository) Create(_ context.Context, car *domain.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *car
	r.cars[car.ID] = &clone
	return nil
}

func (r *CarRepository) Update(_ context.Context, car *domain.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[car.ID]; !ok {
		return domain.RecordNotFound("car", car.ID)
	}
	clone := *car
	r.cars[car.ID] = &clone
	return nil
}

func (r *CarRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[id]; !ok {
		return domain.RecordNotFound("car", id)
	}
	delete(r.cars, id)
	return nil
}
