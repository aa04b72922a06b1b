package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth verifies the bearer token and injects its subject and role into the
// context. Failures are domain.ErrInvalidToken errors for the error handler.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.InvalidToken("token is missing", nil)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.InvalidToken("authorization header must be a bearer token", nil)
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, claims.Role)

			return next(c)
		}
	}
}
