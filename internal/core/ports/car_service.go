package ports

import (
	"context"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
)

// CarInput holds the mutable catalog fields of a car.
type CarInput struct {
	Name  string
	Price int64
	Size  domain.CarSize
	Image string
}

// ListCarsInput carries all parameters for the list endpoint.
type ListCarsInput struct {
	Page        int
	PageSize    int
	Size        domain.CarSize
	AvailableAt time.Time
}

// ListCarsResult is one page of cars plus its envelope.
type ListCarsResult struct {
	Cars       []*domain.Car
	Pagination pagination.Envelope
}

// CarService defines catalog use cases.
type CarService interface {
	ListCars(ctx context.Context, input ListCarsInput) (*ListCarsResult, error)
	GetCar(ctx context.Context, id string) (*domain.Car, error)
	CreateCar(ctx context.Context, input CarInput) (*domain.Car, error)
	UpdateCar(ctx context.Context, id string, input CarInput) (*domain.Car, error)
	DeleteCar(ctx context.Context, id string) error
}
