package rest

import (
	"context"
	"net/http"
	"time"

	"nycTaxiExplorer/business/analytics"
	"nycTaxiExplorer/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AnalyticsService interface {
	DefaultK() int
	TopZones(ctx context.Context, k int, metric string) ([]domain.TopZone, error)
	TopRoutes(ctx context.Context, k int) ([]domain.TopRoute, error)
	DetectAnomalies(ctx context.Context, sampleSize int) (analytics.AnomalyReport, error)
	SpeedPatterns(ctx context.Context) ([]domain.SpeedPattern, error)
	RevenueByHour(ctx context.Context) ([]domain.HourlyRevenue, error)
	CompareBoroughs(ctx context.Context) ([]domain.BoroughComparison, error)
	Insights(ctx context.Context) (domain.Insights, error)
}

type AnalyticsHandler struct {
	analyticsService AnalyticsService
	validator        *validator.Validate
	timeout          time.Duration
}

func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		validator:        validator.New(),
		// anomaly detection over a large sample needs more room than plain lookups
		timeout: 30 * time.Second,
	}
}

type topZonesQuery struct {
	K      int    `validate:"gte=1,lte=1000"`
	Metric string `validate:"oneof=pickups dropoffs revenue"`
}

type topRoutesQuery struct {
	K int `validate:"gte=1,lte=1000"`
}

type anomalyQuery struct {
	Sample int `validate:"gte=0,lte=100000"`
}

// TopZones handles GET /api/analytics/top-zones?k=&metric=
func (h *AnalyticsHandler) TopZones(c echo.Context) error {
	k, err := queryInt(c, "k", h.analyticsService.DefaultK())
	if err != nil {
		return badRequest(c, "invalid k")
	}

	q := topZonesQuery{K: k, Metric: c.QueryParam("metric")}
	if q.Metric == "" {
		q.Metric = domain.MetricPickups
	}
	if err := h.validator.Struct(q); err != nil {
		return badRequest(c, "k must be between 1 and 1000 and metric one of pickups, dropoffs, revenue")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	zones, err := h.analyticsService.TopZones(ctx, q.K, q.Metric)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(zones))
}

// TopRoutes handles GET /api/analytics/top-routes?k=
func (h *AnalyticsHandler) TopRoutes(c echo.Context) error {
	k, err := queryInt(c, "k", h.analyticsService.DefaultK())
	if err != nil {
		return badRequest(c, "invalid k")
	}
	if err := h.validator.Struct(topRoutesQuery{K: k}); err != nil {
		return badRequest(c, "k must be between 1 and 1000")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	routes, err := h.analyticsService.TopRoutes(ctx, k)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(routes))
}

// Anomalies handles GET /api/analytics/anomalies?sample=
func (h *AnalyticsHandler) Anomalies(c echo.Context) error {
	sample, err := queryInt(c, "sample", 0)
	if err != nil {
		return badRequest(c, "invalid sample")
	}
	if err := h.validator.Struct(anomalyQuery{Sample: sample}); err != nil {
		return badRequest(c, "sample must be between 0 and 100000")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.analyticsService.DetectAnomalies(ctx, sample)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

func (h *AnalyticsHandler) SpeedPatterns(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	speeds, err := h.analyticsService.SpeedPatterns(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(speeds))
}

func (h *AnalyticsHandler) RevenueHourly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	revenue, err := h.analyticsService.RevenueByHour(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(revenue))
}

func (h *AnalyticsHandler) BoroughComparison(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	boroughs, err := h.analyticsService.CompareBoroughs(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(boroughs))
}

func (h *AnalyticsHandler) Insights(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	insights, err := h.analyticsService.Insights(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(insights))
}
