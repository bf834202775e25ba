package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// mapError maps a pkg/shared/errkind-tagged error to an HTTP status code.
// This is the only place in the module that converts the error taxonomy
// into transport-level status, per spec.md §7's propagation policy.
func mapError(err error) *echo.HTTPError {
	switch errkind.Kind(err) {
	case errkind.ErrClientInvalid:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errkind.ErrDeadlineExceeded:
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errkind.ErrTransportUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errkind.ErrParseError, errkind.ErrCriticalValidation:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
