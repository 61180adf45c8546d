package rest

import (
	"context"
	"net/http"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type QueryService interface {
	BasicStats(ctx context.Context) (domain.BasicStats, error)
	HourlyDistribution(ctx context.Context) ([]domain.HourlyStat, error)
	TripsByBorough(ctx context.Context) ([]domain.BoroughStat, error)
	FareDistribution(ctx context.Context, bins int) ([]domain.FareBin, error)
	PopularRoutes(ctx context.Context, limit int) ([]domain.RouteStat, error)
	SearchTrips(ctx context.Context, req domain.SearchRequest) ([]domain.TripDetail, error)
}

type StatsHandler struct {
	queryService QueryService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewStatsHandler(queryService QueryService) *StatsHandler {
	return &StatsHandler{
		queryService: queryService,
		validator:    validator.New(),
		timeout:      defaultTimeout,
	}
}

type fareQuery struct {
	Bins int `validate:"gte=1,lte=100"`
}

// Health handles GET /api/health
func (h *StatsHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.queryService.BasicStats(ctx)
	if err != nil {
		logger.Error("Health check failed", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "unhealthy",
			"database": "disconnected",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":      "healthy",
		"database":    "connected",
		"total_trips": stats.TotalTrips,
	})
}

// Stats handles GET /api/stats
func (h *StatsHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.queryService.BasicStats(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

func (h *StatsHandler) Hourly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	hours, err := h.queryService.HourlyDistribution(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(hours))
}

func (h *StatsHandler) Borough(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	boroughs, err := h.queryService.TripsByBorough(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(boroughs))
}

// Fares handles GET /api/stats/fares?bins=
func (h *StatsHandler) Fares(c echo.Context) error {
	bins, err := queryInt(c, "bins", 10)
	if err != nil {
		return badRequest(c, "invalid bins")
	}
	if err := h.validator.Struct(fareQuery{Bins: bins}); err != nil {
		return badRequest(c, "bins must be between 1 and 100")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	dist, err := h.queryService.FareDistribution(ctx, bins)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(dist))
}

// PopularRoutes handles GET /api/routes/popular?limit=
func (h *StatsHandler) PopularRoutes(c echo.Context) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	routes, err := h.queryService.PopularRoutes(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(routes))
}

// SearchTrips handles POST /api/search/trips
func (h *StatsHandler) SearchTrips(c echo.Context) error {
	var req domain.SearchRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	trips, err := h.queryService.SearchTrips(ctx, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(trips))
}
