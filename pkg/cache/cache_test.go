package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemory_RoundTrip(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	var miss payload
	ok, err := c.Get(ctx, "insights", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "insights", payload{Name: "JFK Airport", Score: 12.5}))

	var got payload
	ok, err = c.Get(ctx, "insights", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Name: "JFK Airport", Score: 12.5}, got)

	require.NoError(t, c.Invalidate(ctx))
	ok, err = c.Get(ctx, "insights", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_CancelledContext(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.Set(ctx, "k", 1))
	assert.Error(t, c.Invalidate(ctx))
	var v int
	_, err := c.Get(ctx, "k", &v)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", 1))
	require.NoError(t, c.Invalidate(context.Background()))
	var v int
	ok, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}
