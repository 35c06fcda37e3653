package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront-api/internal/service"
)

// fail writes the storefront error body.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "errors": msg})
}

// respondError maps service errors onto HTTP statuses.  Internal details
// are logged by the request logger, never echoed to the client.
func respondError(c echo.Context, err error) error {
	c.Set("error", err)
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"errors": "please authenticate using valid token"})
	case errors.Is(err, service.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, "invalid input")
	case errors.Is(err, service.ErrDuplicateEmail):
		return fail(c, http.StatusBadRequest, "existing user found with same email address")
	case errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		return fail(c, http.StatusConflict, "conflict, please retry")
	case errors.Is(err, service.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusGatewayTimeout, "store timed out")
	case errors.Is(err, service.ErrStoreUnavailable):
		return fail(c, http.StatusServiceUnavailable, "store unavailable")
	case errors.Is(err, context.Canceled):
		return fail(c, 499, "request cancelled")
	default:
		return fail(c, http.StatusInternalServerError, "internal error")
	}
}
