package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunLister struct {
	mock.Mock
}

func (m *mockRunLister) FindAll(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PipelineRun), args.Error(1)
}

type failingInvalidator struct{}

func (failingInvalidator) Invalidate(context.Context) error {
	return errors.New("redis: connection pool timeout")
}

func TestAdminRuns_Limit(t *testing.T) {
	runs := new(mockRunLister)
	runs.On("FindAll", mock.Anything, 20).Return([]domain.PipelineRun{{Status: domain.PipelineStatusSucceeded}}, nil)
	h := NewPipelineAdminHandler(runs, cache.Nop{})

	c, rec := newContext(http.MethodGet, "/api/admin/pipeline/runs", "")
	require.NoError(t, h.Runs(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.PipelineStatusSucceeded)

	c, rec = newContext(http.MethodGet, "/api/admin/pipeline/runs?limit=0", "")
	require.NoError(t, h.Runs(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminFlushCache_DropsInMemoryResults(t *testing.T) {
	mem := cache.NewMemory(time.Minute)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "insights", domain.Insights{}))

	c, rec := newContext(http.MethodPost, "/api/admin/cache/flush", "")
	require.NoError(t, NewPipelineAdminHandler(new(mockRunLister), mem).FlushCache(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.Insights
	ok, err := mem.Get(ctx, "insights", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminFlushCache_Failure(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/admin/cache/flush", "")
	require.NoError(t, NewPipelineAdminHandler(new(mockRunLister), failingInvalidator{}).FlushCache(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}
