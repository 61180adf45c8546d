package rest

import (
	"context"
	"net/http"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type PipelineRunLister interface {
	FindAll(ctx context.Context, limit int) ([]domain.PipelineRun, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type PipelineAdminHandler struct {
	runs    PipelineRunLister
	cache   CacheInvalidator
	timeout time.Duration
}

func NewPipelineAdminHandler(runs PipelineRunLister, cache CacheInvalidator) *PipelineAdminHandler {
	return &PipelineAdminHandler{runs: runs, cache: cache, timeout: defaultTimeout}
}

// Runs handles GET /api/admin/pipeline/runs?limit=
func (h *PipelineAdminHandler) Runs(c echo.Context) error {
	limit, err := queryInt(c, "limit", 20)
	if err != nil || limit < 1 || limit > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be between 1 and 500"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	runs, err := h.runs.FindAll(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(runs))
}

// FlushCache handles POST /api/admin/cache/flush. Run it after an ETL reseed
// when the API keeps analytics in process memory.
func (h *PipelineAdminHandler) FlushCache(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx); err != nil {
		return respondError(c, err)
	}

	logger.Info("Analytics cache flushed", "by", c.Get("user_id"))
	return c.JSON(http.StatusOK, fres.Response.StatusOK("analytics cache flushed"))
}
