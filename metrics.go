package vecsky

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    addCounter     prometheus.Counter
//	    scanHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordAdd(points int, duration time.Duration, err error) {
//	    p.addCounter.Add(float64(points))
//	}
type MetricsCollector interface {
	// RecordAdd is called after each Add or AddBatch call.
	// points is the number of points in the call, err is nil if successful.
	RecordAdd(points int, duration time.Duration, err error)

	// RecordQuery is called after each Query call returned.
	// duration covers validation and scan start, not the scan itself.
	RecordQuery(duration time.Duration, err error)

	// RecordScan is called once per finished scan.
	RecordScan(scanned, matched int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordQuery(time.Duration, error)          {}
func (NoopMetricsCollector) RecordScan(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	AddPoints      atomic.Int64
	AddTotalNanos  atomic.Int64
	QueryCount     atomic.Int64
	QueryErrors    atomic.Int64
	ScanCount      atomic.Int64
	ScanStopped    atomic.Int64
	ScanScanned    atomic.Int64
	ScanMatched    atomic.Int64
	ScanTotalNanos atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(points int, duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
		return
	}
	b.AddPoints.Add(int64(points))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, err error) {
	b.QueryCount.Add(1)
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(scanned, matched int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanScanned.Add(int64(scanned))
	b.ScanMatched.Add(int64(matched))
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanStopped.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:     b.AddCount.Load(),
		AddErrors:    b.AddErrors.Load(),
		AddPoints:    b.AddPoints.Load(),
		AddAvgNanos:  avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		QueryCount:   b.QueryCount.Load(),
		QueryErrors:  b.QueryErrors.Load(),
		ScanCount:    b.ScanCount.Load(),
		ScanStopped:  b.ScanStopped.Load(),
		ScanScanned:  b.ScanScanned.Load(),
		ScanMatched:  b.ScanMatched.Load(),
		ScanAvgNanos: avg(b.ScanTotalNanos.Load(), b.ScanCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount     int64
	AddErrors    int64
	AddPoints    int64
	AddAvgNanos  int64
	QueryCount   int64
	QueryErrors  int64
	ScanCount    int64
	ScanStopped  int64
	ScanScanned  int64
	ScanMatched  int64
	ScanAvgNanos int64
}
