package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	require.NoError(t, c.AcquireMemory(context.Background(), 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 20), context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), 20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_CacheBudget(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10, CacheLimitBytes: 10})

	assert.True(t, c.TryAcquireCache(8))
	assert.False(t, c.TryAcquireCache(4))
	assert.Equal(t, int64(8), c.CacheUsage())

	// Cache reservations do not count against memory.
	require.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.Equal(t, int64(10), c.MemoryUsage())
	c.ReleaseMemory(10)

	c.ReleaseCache(8)
	assert.Zero(t, c.CacheUsage())
	assert.True(t, c.TryAcquireCache(10))
}

func TestController_OverLimit(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 64})
	err := c.AcquireMemory(context.Background(), 65)
	assert.ErrorIs(t, err, ErrOverLimit)
	assert.Zero(t, c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireQuery(context.Background()))
	c.ReleaseQuery()
	require.NoError(t, c.AcquireMemory(context.Background(), 1<<40))
	assert.True(t, c.TryAcquireMemory(1))
	c.ReleaseMemory(1)
	assert.Zero(t, c.MemoryUsage())
	assert.True(t, c.TryAcquireCache(1))
	c.ReleaseCache(1)
	assert.Zero(t, c.CacheUsage())
	assert.Zero(t, c.QueriesInFlight())
	require.NoError(t, c.WaitLoad(context.Background(), 10))
}

func TestController_Queries(t *testing.T) {
	c := NewController(Config{MaxConcurrentQueries: 2})

	require.NoError(t, c.AcquireQuery(context.Background()))
	require.NoError(t, c.AcquireQuery(context.Background()))
	assert.Equal(t, int64(2), c.QueriesInFlight())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireQuery(ctx), context.DeadlineExceeded)

	c.ReleaseQuery()
	require.NoError(t, c.AcquireQuery(context.Background()))
	c.ReleaseQuery()
	c.ReleaseQuery()
	assert.Zero(t, c.QueriesInFlight())
}

func TestController_QueryRate(t *testing.T) {
	c := NewController(Config{QueriesPerSecond: 1})

	// The first query consumes the burst.
	require.NoError(t, c.AcquireQuery(context.Background()))
	c.ReleaseQuery()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireQuery(ctx))
}

func TestThrottledReader(t *testing.T) {
	t.Run("PassThroughWithoutLimit", func(t *testing.T) {
		r := strings.NewReader("abc")
		assert.Same(t, r, NewThrottledReader(context.Background(), r, NewController(Config{})))
	})

	t.Run("ReadsAllBytes", func(t *testing.T) {
		c := NewController(Config{LoadBytesPerSec: 1 << 20})
		payload := bytes.Repeat([]byte("x"), 4096)
		r := NewThrottledReader(context.Background(), bytes.NewReader(payload), c)

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("Cancelled", func(t *testing.T) {
		c := NewController(Config{LoadBytesPerSec: 1})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewThrottledReader(ctx, strings.NewReader("abcdef"), c)
		_, err := io.ReadAll(r)
		assert.Error(t, err)
	})
}
