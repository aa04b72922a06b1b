package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
)

// errorBody is the canonical error envelope for all API errors:
// {"error": {"name": ..., "message": ..., "details": ...}}.
type errorBody struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// StatusFor maps every domain error kind to its HTTP status. Unknown kinds
// are server faults.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindEmailAlreadyTaken, domain.KindCarAlreadyRented, domain.KindInvalidInterval:
		return http.StatusUnprocessableEntity
	case domain.KindEmailNotRegistered, domain.KindRecordNotFound:
		return http.StatusNotFound
	case domain.KindWrongPassword, domain.KindInvalidToken:
		return http.StatusUnauthorized
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindInsufficientAccess:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their status and exposes kind, message and details.
//   - Renders echo errors (bind failures, unknown routes, 429) in the same envelope.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorBody) {
	var de *domain.Error
	if errors.As(err, &de) {
		if code := StatusFor(de.Kind); code != http.StatusInternalServerError {
			return code, errorBody{Name: string(de.Kind), Message: de.Message, Details: de.Details}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			return http.StatusNotFound, notFoundBody(c)
		}
		if he.Code < http.StatusInternalServerError {
			return he.Code, errorBody{
				Name:    strings.ReplaceAll(http.StatusText(he.Code), " ", ""),
				Message: fmt.Sprintf("%v", he.Message),
			}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorBody{Name: "Error", Message: "internal server error"}
}

func notFoundBody(c echo.Context) errorBody {
	return errorBody{
		Name:    "Error",
		Message: "Not found!",
		Details: map[string]any{
			"method": c.Request().Method,
			"url":    c.Request().URL.String(),
		},
	}
}
