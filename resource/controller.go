package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for point memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentScans is the maximum number of scans running at once.
	// If 0, unlimited.
	MaxConcurrentScans int64

	// QueriesPerSecond is the sustained rate at which scans are admitted.
	// If 0, unlimited.
	QueriesPerSecond float64

	// QueryBurst is the number of scans admitted at once above the sustained rate.
	// If 0, defaults to max(1, QueriesPerSecond).
	QueryBurst int
}

// Controller manages resources shared between collections.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Scans
	scanSem *semaphore.Weighted // nil if unlimited
	active  atomic.Int64

	// Rate
	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg: cfg,
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxConcurrentScans > 0 {
		c.scanSem = semaphore.NewWeighted(cfg.MaxConcurrentScans)
	}

	if cfg.QueriesPerSecond > 0 {
		burst := cfg.QueryBurst
		if burst <= 0 {
			burst = max(1, int(cfg.QueriesPerSecond))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireScan waits until the rate limiter and the scan limit admit a scan,
// or ctx is done.
func (c *Controller) AcquireScan(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.scanSem != nil {
		if err := c.scanSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.active.Add(1)
	return nil
}

// TryAcquireScan attempts to admit a scan without blocking.
func (c *Controller) TryAcquireScan() bool {
	if c == nil {
		return true
	}

	if c.limiter != nil && !c.limiter.Allow() {
		return false
	}

	if c.scanSem != nil && !c.scanSem.TryAcquire(1) {
		return false
	}

	c.active.Add(1)
	return true
}

// ReleaseScan releases a scan slot acquired by AcquireScan or TryAcquireScan.
func (c *Controller) ReleaseScan() {
	if c == nil {
		return
	}

	if c.scanSem != nil {
		c.scanSem.Release(1)
	}
	c.active.Add(-1)
}

// ActiveScans returns the number of scans currently admitted.
func (c *Controller) ActiveScans() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}
