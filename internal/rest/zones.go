package rest

import (
	"context"
	"net/http"
	"time"

	"nycTaxiExplorer/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

type ZoneService interface {
	All(ctx context.Context) ([]domain.Zone, error)
	GetWithStats(ctx context.Context, id int64) (domain.ZoneWithStats, error)
	ByBorough(ctx context.Context, borough string) ([]domain.Zone, error)
	Boroughs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]domain.Zone, error)
}

// ZoneRanker serves the zone leaderboards backed by SQL aggregates.
type ZoneRanker interface {
	TopPickupZones(ctx context.Context, limit int) ([]domain.ZoneCount, error)
	TopDropoffZones(ctx context.Context, limit int) ([]domain.ZoneCount, error)
}

type ZoneTripFinder interface {
	ByZone(ctx context.Context, zoneID int64, locationType string) ([]domain.Trip, error)
}

type ZoneHandler struct {
	zoneService ZoneService
	ranker      ZoneRanker
	trips       ZoneTripFinder
	timeout     time.Duration
}

func NewZoneHandler(zoneService ZoneService, ranker ZoneRanker, trips ZoneTripFinder) *ZoneHandler {
	return &ZoneHandler{
		zoneService: zoneService,
		ranker:      ranker,
		trips:       trips,
		timeout:     defaultTimeout,
	}
}

// GetAll handles GET /api/zones and GET /api/zones?borough=
func (h *ZoneHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var (
		zones []domain.Zone
		err   error
	)
	if borough := c.QueryParam("borough"); borough != "" {
		zones, err = h.zoneService.ByBorough(ctx, borough)
	} else {
		zones, err = h.zoneService.All(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(zones))
}

// GetByID handles GET /api/zones/:id
func (h *ZoneHandler) GetByID(c echo.Context) error {
	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid zone id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	zone, err := h.zoneService.GetWithStats(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(zone))
}

func (h *ZoneHandler) Boroughs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	boroughs, err := h.zoneService.Boroughs(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(boroughs))
}

// Search handles GET /api/zones/search?q=
func (h *ZoneHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	zones, err := h.zoneService.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(zones))
}

func (h *ZoneHandler) TopPickups(c echo.Context) error {
	return h.top(c, h.ranker.TopPickupZones)
}

func (h *ZoneHandler) TopDropoffs(c echo.Context) error {
	return h.top(c, h.ranker.TopDropoffZones)
}

func (h *ZoneHandler) top(c echo.Context, fetch func(context.Context, int) ([]domain.ZoneCount, error)) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	zones, err := fetch(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(zones))
}

// Trips handles GET /api/zones/:id/trips?type=pickup|dropoff
func (h *ZoneHandler) Trips(c echo.Context) error {
	id, err := cast.ToInt64E(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid zone id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	trips, err := h.trips.ByZone(ctx, id, c.QueryParam("type"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(trips))
}
