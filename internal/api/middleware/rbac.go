package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// RBAC admits only the given roles. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				return domain.InsufficientAccess(role)
			}
			return next(c)
		}
	}
}
