package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

type CarService struct {
	repo   ports.CarRepository
	pages  pagination.Policy
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.CarService = (*CarService)(nil)

func NewCarService(repo ports.CarRepository, pages pagination.Policy, logger zerolog.Logger) *CarService {
	return &CarService{repo: repo, pages: pages, logger: logger, now: time.Now}
}

// ListCars returns one page of the catalog, newest first. AvailableAt, when
// set, hides cars with a booking covering that instant.
func (s *CarService) ListCars(ctx context.Context, input ports.ListCarsInput) (*ports.ListCarsResult, error) {
	if input.Size != "" && !input.Size.Valid() {
		return nil, domain.InvalidArgument("unknown car size %q", input.Size)
	}

	page, pageSize := s.pages.Normalize(input.Page, input.PageSize)
	window := s.pages.ComputeWindow(page, pageSize)

	cars, total, err := s.repo.List(ctx, ports.ListCarsFilter{
		Size:        input.Size,
		AvailableAt: input.AvailableAt,
		Offset:      window.Offset,
		Limit:       window.Limit,
	})
	if err != nil {
		return nil, err
	}
	if cars == nil {
		cars = []*domain.Car{}
	}

	return &ports.ListCarsResult{
		Cars:       cars,
		Pagination: s.pages.BuildEnvelope(total, page, pageSize),
	}, nil
}

func (s *CarService) GetCar(ctx context.Context, id string) (*domain.Car, error) {
	return s.findCar(ctx, id)
}

// CreateCar adds a car to the catalog.
func (s *CarService) CreateCar(ctx context.Context, input ports.CarInput) (*domain.Car, error) {
	if err := validateCarInput(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	car := &domain.Car{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Price:     input.Price,
		Size:      input.Size,
		Image:     input.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		s.logger.Error().Err(err).Msg("failed to create car")
		return nil, err
	}

	s.logger.Info().Str("car_id", car.ID).Str("size", string(car.Size)).Msg("car created")
	return car, nil
}

// UpdateCar replaces the catalog fields of an existing car.
func (s *CarService) UpdateCar(ctx context.Context, id string, input ports.CarInput) (*domain.Car, error) {
	if err := validateCarInput(input); err != nil {
		return nil, err
	}

	car, err := s.findCar(ctx, id)
	if err != nil {
		return nil, err
	}
	car.Name = input.Name
	car.Price = input.Price
	car.Size = input.Size
	car.Image = input.Image
	car.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, notFoundAs(err, "car", id)
	}

	s.logger.Info().Str("car_id", car.ID).Msg("car updated")
	return car, nil
}

func (s *CarService) DeleteCar(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "car", id)
	}
	s.logger.Info().Str("car_id", id).Msg("car deleted")
	return nil
}

func (s *CarService) findCar(ctx context.Context, id string) (*domain.Car, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "car", id)
	}
	return car, nil
}

func validateCarInput(in ports.CarInput) error {
	switch {
	case in.Name == "":
		return domain.InvalidArgument("car name must be provided")
	case in.Price <= 0:
		return domain.InvalidArgument("car price must be a positive integer")
	case !in.Size.Valid():
		return domain.InvalidArgument("unknown car size %q", in.Size)
	}
	return nil
}

// notFoundAs rewrites a store miss into a RecordNotFound naming entity and id.
func notFoundAs(err error, entity, id string) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.RecordNotFound(entity, id)
	}
	return err
}
