// Package resource bounds the memory, concurrency and rate of query work.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrOverLimit is returned when a single reservation exceeds the
// configured memory limit and could never be satisfied.
var ErrOverLimit = errors.New("reservation exceeds memory limit")

// Config holds resource limits. Zero values disable the respective limit.
type Config struct {
	// MemoryLimitBytes bounds the circuit scratch memory held by all
	// in-flight batches.
	MemoryLimitBytes int64

	// MaxConcurrentQueries bounds the number of queries running at once.
	MaxConcurrentQueries int64

	// QueriesPerSecond limits the query admission rate.
	QueriesPerSecond float64

	// LoadBytesPerSec throttles table loads from sources.
	LoadBytesPerSec int64

	// CacheLimitBytes bounds the bytes held by object caches. It is a
	// separate budget from MemoryLimitBytes so cached objects never hold
	// back circuit scratch memory.
	CacheLimitBytes int64
}

// Controller enforces a Config. A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted
	memUsed atomic.Int64

	cacheSem  *semaphore.Weighted
	cacheUsed atomic.Int64

	querySem *semaphore.Weighted
	inFlight atomic.Int64

	queryLimiter *rate.Limiter
	loadLimiter  *rate.Limiter
}

// NewController creates a controller enforcing cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.CacheLimitBytes > 0 {
		c.cacheSem = semaphore.NewWeighted(cfg.CacheLimitBytes)
	}

	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}

	if cfg.QueriesPerSecond > 0 {
		burst := max(1, int(cfg.QueriesPerSecond))
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}

	if cfg.LoadBytesPerSec > 0 {
		c.loadLimiter = rate.NewLimiter(rate.Limit(cfg.LoadBytesPerSec), int(cfg.LoadBytesPerSec))
	}

	return c
}

// Config returns the limits the controller enforces.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireQuery admits one query, waiting for the rate limiter and a free
// concurrency slot. Every successful call must be paired with ReleaseQuery.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.queryLimiter != nil {
		if err := c.queryLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.querySem != nil {
		if err := c.querySem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.inFlight.Add(1)
	return nil
}

// ReleaseQuery releases a slot taken by AcquireQuery.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}
	if c.querySem != nil {
		c.querySem.Release(1)
	}
	c.inFlight.Add(-1)
}

// QueriesInFlight returns the number of admitted, unreleased queries.
func (c *Controller) QueriesInFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireMemory reserves bytes, blocking until they are available or ctx
// is done. Reservations larger than the limit fail with ErrOverLimit.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: %d > %d bytes", ErrOverLimit, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking and reports success.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases a reservation made by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// TryAcquireCache reserves bytes of the cache budget without blocking and
// reports success.
func (c *Controller) TryAcquireCache(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.cacheSem != nil && !c.cacheSem.TryAcquire(bytes) {
		return false
	}

	c.cacheUsed.Add(bytes)
	return true
}

// ReleaseCache releases a reservation made by TryAcquireCache.
func (c *Controller) ReleaseCache(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.cacheSem != nil {
		c.cacheSem.Release(bytes)
	}
	c.cacheUsed.Add(-bytes)
}

// CacheUsage returns the reserved cache bytes.
func (c *Controller) CacheUsage() int64 {
	if c == nil {
		return 0
	}
	return c.cacheUsed.Load()
}

// WaitLoad blocks until the load limiter allows n more bytes.
func (c *Controller) WaitLoad(ctx context.Context, n int) error {
	if c == nil || c.loadLimiter == nil || n <= 0 {
		return nil
	}

	burst := c.loadLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.loadLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
