package constellation

import (
	"context"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/hupe1980/vecsky/distance"
	"github.com/hupe1980/vecsky/point"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many points a worker visits between context checks.
const cancelCheckInterval = 1024

// Find streams every stored point whose squared Euclidean distance to query
// is <= radiusSquared.
//
// IMPORTANT: radiusSquared is a SQUARED distance. To find points within a
// linear radius r, pass r*r.
//
// Find returns immediately; the scan runs on a background goroutine and
// fans out over opts.Workers goroutines. Matches arrive in no particular
// order. The scan stops early when ctx is done or the stream is closed.
func (s *Store[V]) Find(ctx context.Context, query V, radiusSquared float32, optFns ...func(o *FindOptions)) *Stream {
	return s.find(ctx, point.Slice(query), radiusSquared, applyFindOptions(optFns))
}

func (s *Store[V]) find(ctx context.Context, query []float32, radiusSquared float32, opts FindOptions) *Stream {
	ctx, cancel := context.WithCancel(ctx)

	ch := make(chan Match, opts.BufferSize)
	done := make(chan struct{})

	go func() {
		start := time.Now()
		var stats ScanStats

		// The channel must be closed on every exit path, or the consumer hangs.
		defer func() {
			close(ch)
			cancel()
			stats.Duration = time.Since(start)
			if opts.OnComplete != nil {
				opts.OnComplete(stats)
			}
			close(done)
		}()

		stats = s.scan(ctx, query, radiusSquared, opts, ch)
	}()

	stream := &Stream{
		ch:     ch,
		cancel: cancel,
		done:   done,
	}
	// The scan goroutine never references the Stream, so an abandoned stream
	// becomes unreachable and its cleanup stops the scan.
	runtime.AddCleanup(stream, func(cancel context.CancelFunc) { cancel() }, cancel)

	return stream
}

func (s *Store[V]) scan(ctx context.Context, query []float32, radiusSquared float32, opts FindOptions, ch chan<- Match) ScanStats {
	var stats ScanStats

	if opts.Gate != nil {
		if err := opts.Gate.AcquireScan(ctx); err != nil {
			stats.Err = err
			return stats
		}
		defer opts.Gate.ReleaseScan()
	}

	data, n, release := s.snapshot(opts.LockMode)
	defer release()

	stats.Total = n
	if n == 0 || math.IsNaN(float64(radiusSquared)) {
		return stats
	}

	chunk := max((n+opts.Workers-1)/opts.Workers, minChunkSize)
	workers := (n + chunk - 1) / chunk
	scanned := make([]int, workers)
	matched := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for w := range workers {
		if gctx.Err() != nil {
			break
		}

		lo := w * chunk
		hi := min(lo+chunk, n)

		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckInterval == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				if opts.Filter != nil && !opts.Filter.Contains(uint32(i)) {
					continue
				}

				vec := data[i*s.dim : (i+1)*s.dim]
				d, exceeded := distance.SquaredL2Bounded(query, vec, radiusSquared)
				scanned[w]++
				if exceeded {
					continue
				}

				m := Match{
					Distance: d,
					Point:    slices.Clone(vec),
					Position: uint32(i),
				}
				select {
				case ch <- m:
					matched[w]++
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	stats.Err = g.Wait()
	if stats.Err == nil {
		stats.Err = ctx.Err()
	}
	for w := range workers {
		stats.Scanned += scanned[w]
		stats.Matched += matched[w]
	}
	return stats
}
