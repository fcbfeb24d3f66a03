package constellation

import (
	"context"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultBufferSize is the default capacity of the result channel.
const DefaultBufferSize = 100

// minChunkSize is the smallest number of points handed to one scan worker.
const minChunkSize = 256

// LockMode controls how long a scan holds the store's read lock.
type LockMode int

const (
	// LockSnapshot takes the read lock only to capture the current length.
	// Writers are never blocked by a slow consumer; points added after the
	// snapshot are not visible to the scan.
	LockSnapshot LockMode = iota

	// LockHeld holds the read lock for the whole scan. Adds to the store
	// wait until the scan has finished.
	LockHeld
)

func (m LockMode) String() string {
	switch m {
	case LockSnapshot:
		return "snapshot"
	case LockHeld:
		return "held"
	default:
		return "unknown"
	}
}

// Gate admits scans. It is acquired by the scan goroutine before any point
// is visited and released once the scan is done.
type Gate interface {
	AcquireScan(ctx context.Context) error
	ReleaseScan()
}

// ScanStats describes a finished scan.
type ScanStats struct {
	// Total is the number of points in the scanned snapshot.
	Total int
	// Scanned is the number of points whose distance was computed.
	Scanned int
	// Matched is the number of matches sent to the consumer.
	Matched int
	// Duration is the wall time from scan start to channel close.
	Duration time.Duration
	// Err is set when the scan stopped early (consumer gone, context done,
	// or the gate refused admission).
	Err error
}

// FindOptions configures a single Find call.
type FindOptions struct {
	// Workers is the maximum number of goroutines scanning in parallel.
	// Default: runtime.GOMAXPROCS(0).
	Workers int

	// BufferSize is the capacity of the result channel. Producers block
	// when it is full.
	// Default: 100.
	BufferSize int

	// LockMode selects how the store's read lock is held during the scan.
	// Default: LockSnapshot.
	LockMode LockMode

	// Filter restricts the scan to the given point positions (insertion
	// order, starting at 0). nil scans every point.
	Filter *roaring.Bitmap

	// Gate, if set, admits the scan before it starts.
	Gate Gate

	// OnComplete, if set, is called once after the result channel is closed.
	OnComplete func(ScanStats)
}

func applyFindOptions(optFns []func(o *FindOptions)) FindOptions {
	opts := FindOptions{
		Workers:    runtime.GOMAXPROCS(0),
		BufferSize: DefaultBufferSize,
		LockMode:   LockSnapshot,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize < 0 {
		opts.BufferSize = 0
	}
	return opts
}

// WithWorkers sets FindOptions.Workers.
func WithWorkers(n int) func(o *FindOptions) {
	return func(o *FindOptions) {
		o.Workers = n
	}
}

// WithBufferSize sets FindOptions.BufferSize.
func WithBufferSize(n int) func(o *FindOptions) {
	return func(o *FindOptions) {
		o.BufferSize = n
	}
}

// WithLockMode sets FindOptions.LockMode.
func WithLockMode(m LockMode) func(o *FindOptions) {
	return func(o *FindOptions) {
		o.LockMode = m
	}
}

// WithFilter sets FindOptions.Filter.
func WithFilter(positions *roaring.Bitmap) func(o *FindOptions) {
	return func(o *FindOptions) {
		o.Filter = positions
	}
}
