package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const defaultTimeout = 10 * time.Second

type ResponseError struct {
	Message string `json:"message"`
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and hidden from the client.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTripNotFound), errors.Is(err, domain.ErrZoneNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidParam):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Request timed out", "path", c.Path())
		return c.JSON(http.StatusGatewayTimeout, ResponseError{Message: "request timed out"})
	default:
		logger.Error("Request failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal server error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ResponseError{Message: msg})
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return cast.ToIntE(raw)
}

func queryFloatPtr(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func errInvalidQuery(name string) error {
	return fmt.Errorf("invalid %s", name)
}
