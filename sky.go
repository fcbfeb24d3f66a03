package vecsky

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/vecsky/constellation"
	"github.com/hupe1980/vecsky/dimension"
	"github.com/hupe1980/vecsky/point"
	"golang.org/x/text/unicode/norm"
)

// Sky is a registry of named collections ("constellations").
//
// Each supported dimensionality has its own partition, so the same name may
// exist once per dimensionality. Collections are created on the first Add and
// are never removed.
//
// Thread-safety: All methods are safe for concurrent use. Adds to different
// collections never block each other.
type Sky struct {
	opts       options
	partitions map[dimension.Dimension]*partition
}

// partition maps names to the collections of one dimensionality.
type partition struct {
	dim    dimension.Dimension
	mu     sync.RWMutex
	stores map[string]constellation.Constellation
}

// CollectionStats describes one collection.
type CollectionStats struct {
	Name        string
	Dimension   dimension.Dimension
	Count       int
	MemoryBytes int
}

// New creates an empty Sky.
func New(optFns ...Option) *Sky {
	s := &Sky{
		opts:       applyOptions(optFns),
		partitions: make(map[dimension.Dimension]*partition),
	}
	// Partitions are fixed after construction; only their contents change.
	for _, d := range dimension.All() {
		s.partitions[d] = &partition{
			dim:    d,
			stores: make(map[string]constellation.Constellation),
		}
	}
	return s
}

// Add appends a point to the named collection, creating the collection if it
// does not exist yet. The collection's dimensionality is len(values).
//
// Returns *ErrInvalidSize if len(values) is not a supported dimensionality.
func (s *Sky) Add(ctx context.Context, name string, values []float32) error {
	return s.AddBatch(ctx, name, [][]float32{values})
}

// AddBatch appends several points of the same length to the named collection.
// The batch is validated as a whole: on error nothing is added.
func (s *Sky) AddBatch(ctx context.Context, name string, vectors [][]float32) (err error) {
	start := time.Now()
	name = s.normalize(name)

	var d dimension.Dimension
	defer func() {
		s.opts.metricsCollector.RecordAdd(len(vectors), time.Since(start), err)
		s.opts.logger.LogAdd(ctx, name, d.Len(), len(vectors), err)
	}()

	if len(vectors) == 0 {
		return nil
	}

	d, err = batchDimension(vectors)
	if err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	bytes := int64(len(vectors) * d.Len() * point.CoordinateSize)
	if err = s.opts.controller.AcquireMemory(bytes); err != nil {
		return err
	}

	c := s.resolve(ctx, name, d)
	if err = c.AddPoints(vectors); err != nil {
		s.opts.controller.ReleaseMemory(bytes)
		if errors.Is(err, constellation.ErrFull) {
			return err
		}
		return &ErrInvalidSize{Length: len(vectors[0]), cause: err}
	}

	return nil
}

// Query streams every point of the named collection whose squared Euclidean
// distance to values is <= radiusSquared.
//
// IMPORTANT: radiusSquared is a SQUARED distance. To find points within a
// linear radius r, pass r*r.
//
// The collection is looked up at the dimensionality len(values). Query never
// creates a collection. It returns *ErrInvalidSize for an unsupported length
// and *ErrNotFound if no such collection exists.
//
// The scan runs in the background; the returned stream must be drained or
// closed. optFns override the sky's scan defaults for this query.
func (s *Sky) Query(ctx context.Context, name string, radiusSquared float32, values []float32, optFns ...func(o *constellation.FindOptions)) (stream *constellation.Stream, err error) {
	start := time.Now()
	name = s.normalize(name)

	defer func() {
		s.opts.metricsCollector.RecordQuery(time.Since(start), err)
		s.opts.logger.LogQuery(ctx, name, len(values), radiusSquared, err)
	}()

	d, err := dimension.Of(len(values))
	if err != nil {
		return nil, &ErrInvalidSize{Length: len(values), cause: err}
	}

	c, ok := s.Constellation(name, d)
	if !ok {
		return nil, &ErrNotFound{Name: name, Length: len(values)}
	}

	return c.Find(ctx, values, radiusSquared, s.findOptions(ctx, name, optFns)...)
}

// Constellation returns the named collection of dimensionality d.
func (s *Sky) Constellation(name string, d dimension.Dimension) (constellation.Constellation, bool) {
	p, ok := s.partitions[d]
	if !ok {
		return nil, false
	}

	name = s.normalize(name)

	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.stores[name]
	return c, ok
}

// Names returns the names of all collections of dimensionality d, sorted.
func (s *Sky) Names(d dimension.Dimension) []string {
	p, ok := s.partitions[d]
	if !ok {
		return nil
	}

	p.mu.RLock()
	names := make([]string, 0, len(p.stores))
	for name := range p.stores {
		names = append(names, name)
	}
	p.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Stats returns a snapshot of every collection, ordered by dimension and name.
func (s *Sky) Stats() []CollectionStats {
	var out []CollectionStats
	for _, d := range dimension.All() {
		p := s.partitions[d]

		p.mu.RLock()
		for name, c := range p.stores {
			out = append(out, CollectionStats{
				Name:        name,
				Dimension:   d,
				Count:       c.Count(),
				MemoryBytes: c.MemorySize(),
			})
		}
		p.mu.RUnlock()
	}

	slices.SortFunc(out, func(a, b CollectionStats) int {
		if c := cmp.Compare(a.Dimension, b.Dimension); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// resolve returns the named collection of dimensionality d, creating it if absent.
func (s *Sky) resolve(ctx context.Context, name string, d dimension.Dimension) constellation.Constellation {
	p := s.partitions[d]

	p.mu.RLock()
	c, ok := p.stores[name]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock.
	if c, ok := p.stores[name]; ok {
		return c
	}

	c = constellation.NewBuilder(d).Capacity(s.opts.initialCapacity).MustBuild()
	p.stores[name] = c
	s.opts.logger.LogCreate(ctx, name, d.Len())
	return c
}

func (s *Sky) findOptions(ctx context.Context, name string, optFns []func(o *constellation.FindOptions)) []func(o *constellation.FindOptions) {
	base := func(o *constellation.FindOptions) {
		if s.opts.workers > 0 {
			o.Workers = s.opts.workers
		}
		o.BufferSize = s.opts.bufferSize
		o.LockMode = s.opts.lockMode
		if s.opts.controller != nil {
			o.Gate = s.opts.controller
		}
	}

	observe := func(o *constellation.FindOptions) {
		next := o.OnComplete
		o.OnComplete = func(st constellation.ScanStats) {
			s.opts.metricsCollector.RecordScan(st.Scanned, st.Matched, st.Duration, st.Err)
			s.opts.logger.LogScan(ctx, name, st.Scanned, st.Matched, st.Duration, st.Err)
			if next != nil {
				next(st)
			}
		}
	}

	opts := make([]func(o *constellation.FindOptions), 0, len(optFns)+2)
	opts = append(opts, base)
	opts = append(opts, optFns...)
	return append(opts, observe)
}

func (s *Sky) normalize(name string) string {
	if !s.opts.normalizeNames {
		return name
	}
	return norm.NFC.String(name)
}

// batchDimension returns the common dimensionality of vectors.
func batchDimension(vectors [][]float32) (dimension.Dimension, error) {
	n := len(vectors[0])
	d, err := dimension.Of(n)
	if err != nil {
		return 0, &ErrInvalidSize{Length: n, cause: err}
	}
	for _, v := range vectors[1:] {
		if len(v) != n {
			return 0, &ErrInvalidSize{Length: len(v), cause: point.ErrInvalidSize}
		}
	}
	return d, nil
}
