package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// httpError maps the service error taxonomy onto transport status codes.
// Ownership violations surface as 403 here; masking them as 404 is a
// policy choice left to deployments fronting this API.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStockConflict), errors.Is(err, service.ErrStateConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOwnership):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
