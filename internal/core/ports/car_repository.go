package ports

import (
	"context"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// ListCarsFilter carries all query parameters for listing cars.
type ListCarsFilter struct {
	Size        domain.CarSize // optional: exact size class
	AvailableAt time.Time      // optional: exclude cars booked at this instant
	Offset      int
	Limit       int
}

// CarRepository is the Catalog store. Lookups, updates and deletes of a
// missing id return an error matching domain.ErrRecordNotFound.
type CarRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	// List returns one window of cars matching filter and the total match count.
	List(ctx context.Context, filter ListCarsFilter) ([]*domain.Car, int64, error)
	Create(ctx context.Context, car *domain.Car) error
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id string) error
}
