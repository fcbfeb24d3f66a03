package vecsky

import (
	"log/slog"

	"github.com/hupe1980/vecsky/constellation"
	"github.com/hupe1980/vecsky/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller
	workers          int
	bufferSize       int
	lockMode         constellation.LockMode
	initialCapacity  int
	normalizeNames   bool
}

// Option configures a Sky.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecsky.NewJSONLogger(slog.LevelInfo)
//	sky := vecsky.New(vecsky.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecsky.BasicMetricsCollector{}
//	sky := vecsky.New(vecsky.WithMetricsCollector(metrics))
//	// ... use sky ...
//	stats := metrics.GetStats()
//	fmt.Printf("Scans: %d, Avg latency: %dns\n", stats.ScanCount, stats.ScanAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController shares a resource controller between all
// collections of the sky. It limits point memory, concurrent scans and the
// scan admission rate.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   512 << 20,
//	    MaxConcurrentScans: 8,
//	})
//	sky := vecsky.New(vecsky.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithScanWorkers sets the default number of goroutines per scan.
// Default: runtime.GOMAXPROCS(0).
func WithScanWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBufferSize sets the default capacity of the result channel of a query.
// Default: constellation.DefaultBufferSize.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

// WithLockMode sets the default lock mode of scans.
// Default: constellation.LockSnapshot.
func WithLockMode(m constellation.LockMode) Option {
	return func(o *options) {
		o.lockMode = m
	}
}

// WithInitialCapacity sets the number of points preallocated for each new collection.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithNameNormalization enables or disables Unicode NFC normalization of
// collection names. When enabled, canonically equivalent names address the
// same collection.
// Default: true.
func WithNameNormalization(enabled bool) Option {
	return func(o *options) {
		o.normalizeNames = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		bufferSize:       constellation.DefaultBufferSize,
		lockMode:         constellation.LockSnapshot,
		normalizeNames:   true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
