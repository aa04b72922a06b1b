package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

// defaultRentalDuration applies when a rent request omits rentEndedAt.
const defaultRentalDuration = 24 * time.Hour

// --- Request → Service input ---

func toCarInput(req carRequest) ports.CarInput {
	return ports.CarInput{
		Name:  req.Name,
		Price: req.Price,
		Size:  domain.CarSize(req.Size),
		Image: req.Image,
	}
}

func toListCarsInput(c echo.Context) (ports.ListCarsInput, error) {
	in := ports.ListCarsInput{
		Page:     pagination.ParseInt(c.QueryParam("page")),
		PageSize: pagination.ParseInt(c.QueryParam("pageSize")),
		Size:     domain.CarSize(c.QueryParam("size")),
	}
	if raw := c.QueryParam("availableAt"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, domain.InvalidArgument("availableAt must be an RFC 3339 timestamp")
		}
		in.AvailableAt = t
	}
	return in, nil
}

func toRentalRequest(carID, renterID string, req rentRequest) (ports.RentalRequest, error) {
	if req.RentStartedAt == nil {
		var end time.Time
		if req.RentEndedAt != nil {
			end = *req.RentEndedAt
		}
		return ports.RentalRequest{}, domain.InvalidInterval(time.Time{}, end)
	}

	start := *req.RentStartedAt
	end := start.Add(defaultRentalDuration)
	if req.RentEndedAt != nil {
		end = *req.RentEndedAt
	}
	return ports.RentalRequest{CarID: carID, RenterID: renterID, Start: start, End: end}, nil
}
