package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

// CarHandler handles HTTP requests for catalog operations.
type CarHandler struct {
	service ports.CarService
}

func NewCarHandler(service ports.CarService) *CarHandler {
	return &CarHandler{service: service}
}

// List handles GET /v1/cars.
//
// @Summary      List cars
// @Tags         cars
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        pageSize     query     int     false  "Page size (default 10, max 100)"
// @Param        size         query     string  false  "Size class"  Enums(SMALL, MEDIUM, LARGE)
// @Param        availableAt  query     string  false  "RFC 3339 instant; hides cars booked at that time"
// @Success      200          {object}  listCarsResponse
// @Failure      400          {object}  errorResponse
// @Router       /v1/cars [get]
func (h *CarHandler) List(c echo.Context) error {
	input, err := toListCarsInput(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListCars(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listCarsResponse{
		Cars: res.Cars,
		Meta: listMeta{Pagination: res.Pagination},
	})
}

// Get handles GET /v1/cars/:id.
//
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Param        id   path      string  true  "Car id"
// @Success      200  {object}  domain.Car
// @Failure      404  {object}  errorResponse
// @Router       /v1/cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	car, err := h.service.GetCar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, car)
}

// Create handles POST /v1/cars.
//
// @Summary      Create a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      carRequest  true  "Car details"
// @Success      201   {object}  domain.Car
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	var req carRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.service.CreateCar(c.Request().Context(), toCarInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, car)
}

// Update handles PUT /v1/cars/:id.
//
// @Summary      Update a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Car id"
// @Param        body  body      carRequest  true  "Car details"
// @Success      200   {object}  domain.Car
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	var req carRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.service.UpdateCar(c.Request().Context(), c.Param("id"), toCarInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, car)
}

// Delete handles DELETE /v1/cars/:id.
//
// @Summary      Delete a car
// @Tags         cars
// @Security     BearerAuth
// @Param        id   path  string  true  "Car id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteCar(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
