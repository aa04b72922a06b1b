package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/api/middleware"
	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// ctxUserID returns the token subject injected by the Auth middleware. A
// missing subject means the route was registered without Auth.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return "", domain.InvalidToken("token is missing", nil)
	}
	return id, nil
}
