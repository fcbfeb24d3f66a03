// Package constellation provides the per-collection point store and its
// parallel radius query engine.
//
// A Store holds an append-only sequence of fixed-length points guarded by a
// single reader/writer lock. Find scans every stored point in parallel on a
// background goroutine and streams matches through a bounded channel.
package constellation

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/vecsky/point"
)

// MaxPoints is the largest number of points a store holds. Positions are
// reported as uint32.
const MaxPoints = math.MaxUint32 + 1

// ErrFull is returned when a batch would grow a store past MaxPoints.
var ErrFull = errors.New("store is full")

// Store is an append-only point store specialized to the point type V.
//
// Points are kept contiguously (row-major) so the scan can hand plain
// slices to the distance kernels.
//
// Thread-safety: Multiple readers (Find, Count) may run concurrently;
// Add is exclusive.
type Store[V point.Vector] struct {
	mu    sync.RWMutex
	data  []float32
	count int
	dim   int
	limit int64
}

// NewStore creates an empty store. capacity is the number of points to
// preallocate room for; it may be zero.
func NewStore[V point.Vector](capacity int) *Store[V] {
	dim := point.Dim[V]()
	if capacity < 0 {
		capacity = 0
	}
	return &Store[V]{
		data:  make([]float32, 0, capacity*dim),
		dim:   dim,
		limit: MaxPoints,
	}
}

// Add appends all points to the store under the write lock.
//
// Add panics if the store would hold more than MaxPoints points;
// Constellation.AddPoints reports ErrFull instead.
func (s *Store[V]) Add(points ...V) {
	if err := s.append(points); err != nil {
		panic(err)
	}
}

func (s *Store[V]) append(points []V) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(s.count)+int64(len(points)) > s.limit {
		return fmt.Errorf("%w: holds %d points, adding %d exceeds %d", ErrFull, s.count, len(points), s.limit)
	}

	s.grow(len(points))
	for _, p := range points {
		s.data = point.AppendTo(s.data, p)
	}
	s.count += len(points)
	return nil
}

// grow makes room for n more points. Caller must hold the write lock.
//
// A snapshot taken by a running scan keeps referencing the old backing array,
// so growth never invalidates an in-flight scan.
func (s *Store[V]) grow(n int) {
	need := len(s.data) + n*s.dim
	if need <= cap(s.data) {
		return
	}
	newCap := max(need, 2*cap(s.data))
	data := make([]float32, len(s.data), newCap)
	copy(data, s.data)
	s.data = data
}

// Count returns the number of stored points.
func (s *Store[V]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// MemorySize returns the approximate number of bytes used by the stored points.
func (s *Store[V]) MemorySize() int {
	return s.Count() * s.dim * point.CoordinateSize
}

// Dimensions returns the fixed dimensionality of the store.
func (s *Store[V]) Dimensions() int {
	return s.dim
}

// snapshot returns the stored coordinates and point count as seen now.
//
// With LockHeld the read lock stays held until release is called.
// With LockSnapshot it is released immediately: existing coordinates are
// never mutated and appends only write past the captured length, so the
// prefix can be scanned without the lock.
func (s *Store[V]) snapshot(mode LockMode) (data []float32, n int, release func()) {
	s.mu.RLock()
	data = s.data[:s.count*s.dim:s.count*s.dim]
	n = s.count

	if mode == LockHeld {
		return data, n, s.mu.RUnlock
	}
	s.mu.RUnlock()
	return data, n, func() {}
}
