package rest

import (
	"context"
	"net/http"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/utils"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

type TripService interface {
	List(ctx context.Context, filter domain.TripFilter, page, perPage int) (domain.TripPage, error)
	GetByID(ctx context.Context, id int64) (domain.TripDetail, error)
	ByHour(ctx context.Context, hour int) ([]domain.Trip, error)
	DateRange(ctx context.Context) (domain.DateRange, error)
}

type TripHandler struct {
	tripService TripService
	timeout     time.Duration
}

func NewTripHandler(tripService TripService) *TripHandler {
	return &TripHandler{
		tripService: tripService,
		timeout:     defaultTimeout,
	}
}

// List handles GET /api/trips
func (h *TripHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return badRequest(c, "invalid page")
	}
	perPage, err := queryInt(c, "per_page", 0)
	if err != nil {
		return badRequest(c, "invalid per_page")
	}

	filter, err := parseTripFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.tripService.List(ctx, filter, page, perPage)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// GetByID handles GET /api/trips/:id
func (h *TripHandler) GetByID(c echo.Context) error {
	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid trip id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	trip, err := h.tripService.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(trip))
}

// ByHour handles GET /api/trips/hour/:hour
func (h *TripHandler) ByHour(c echo.Context) error {
	hour, err := cast.ToIntE(c.Param("hour"))
	if err != nil {
		return badRequest(c, "invalid hour")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	trips, err := h.tripService.ByHour(ctx, hour)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(trips))
}

// DateRange handles GET /api/trips/date-range
func (h *TripHandler) DateRange(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	dr, err := h.tripService.DateRange(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(dr))
}

func parseTripFilter(c echo.Context) (domain.TripFilter, error) {
	var filter domain.TripFilter
	var err error

	if raw := c.QueryParam("start_date"); raw != "" {
		t, perr := utils.ParseDate(raw)
		if perr != nil {
			return filter, errInvalidQuery("start_date")
		}
		filter.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, perr := utils.ParseDate(raw)
		if perr != nil {
			return filter, errInvalidQuery("end_date")
		}
		filter.EndDate = &t
	}

	if filter.MinFare, err = queryFloatPtr(c, "min_fare"); err != nil {
		return filter, errInvalidQuery("min_fare")
	}
	if filter.MaxFare, err = queryFloatPtr(c, "max_fare"); err != nil {
		return filter, errInvalidQuery("max_fare")
	}
	if filter.MinDistance, err = queryFloatPtr(c, "min_distance"); err != nil {
		return filter, errInvalidQuery("min_distance")
	}
	if filter.MaxDistance, err = queryFloatPtr(c, "max_distance"); err != nil {
		return filter, errInvalidQuery("max_distance")
	}
	if filter.PickupLocationID, err = queryInt64Ptr(c, "pickup_zone"); err != nil {
		return filter, errInvalidQuery("pickup_zone")
	}
	if filter.DropoffLocationID, err = queryInt64Ptr(c, "dropoff_zone"); err != nil {
		return filter, errInvalidQuery("dropoff_zone")
	}

	return filter, nil
}
