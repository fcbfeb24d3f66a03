// Package resource implements the Controller for limits shared by all
// collections of a sky.
//
// The Controller manages three resource types:
//
//   - Memory: Track and limit point memory (non-blocking, fail-fast)
//   - Scans: Limit the number of radius scans running at once
//   - Query rate: Token bucket admission for scans
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage. AcquireMemory never blocks: points are never removed,
// so waiting for memory to be released would wait forever.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(int64(n * dim * 4)); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//
// # Scan Limits
//
// The Controller implements constellation.Gate. A scan waits for the rate
// limiter first, then for a free scan slot:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentScans: 4,
//	    QueriesPerSecond:   1000,
//	})
//
//	if err := rc.AcquireScan(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseScan()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
