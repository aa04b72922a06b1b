package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/api/metrics"
	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

// RentalHandler exposes the Availability Arbiter.
type RentalHandler struct {
	service ports.RentalService
}

func NewRentalHandler(service ports.RentalService) *RentalHandler {
	return &RentalHandler{service: service}
}

// Rent handles POST /v1/cars/:id/rent. The renter is the token subject.
//
// @Summary      Rent a car
// @Description  Grants the car over [rentStartedAt, rentEndedAt). rentEndedAt defaults to 24h after the start.
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Car id"
// @Param        body  body      rentRequest  true  "Rental interval"
// @Success      201   {object}  domain.Booking
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/cars/{id}/rent [post]
func (h *RentalHandler) Rent(c echo.Context) error {
	renterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req rentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	booking, err := h.rent(c, renterID, req)
	metrics.RentalDecisionsTotal.WithLabelValues(metrics.RentalResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *RentalHandler) rent(c echo.Context, renterID string, req rentRequest) (*domain.Booking, error) {
	rental, err := toRentalRequest(c.Param("id"), renterID, req)
	if err != nil {
		return nil, err
	}
	return h.service.RequestRental(c.Request().Context(), rental)
}

// List handles GET /v1/rentals.
//
// @Summary      List my rentals
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number (default 1)"
// @Param        pageSize  query     int  false  "Page size (default 10, max 100)"
// @Success      200       {object}  listRentalsResponse
// @Failure      401       {object}  errorResponse
// @Router       /v1/rentals [get]
func (h *RentalHandler) List(c echo.Context) error {
	renterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListRentals(
		c.Request().Context(),
		renterID,
		pagination.ParseInt(c.QueryParam("page")),
		pagination.ParseInt(c.QueryParam("pageSize")),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listRentalsResponse{
		Rentals: res.Rentals,
		Meta:    listMeta{Pagination: res.Pagination},
	})
}
