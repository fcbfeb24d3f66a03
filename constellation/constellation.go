package constellation

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/vecsky/point"
)

// Compile-time check to ensure erased satisfies Constellation.
var _ Constellation = (*erased[[6]float32])(nil)

// Constellation is a dimension-erased view of a Store.
//
// It accepts plain coordinate slices and validates their length against the
// store's dimensionality before touching the store.
type Constellation interface {
	// AddPoints appends all points. If any point has the wrong length, no
	// point is added and point.ErrInvalidSize is returned. ErrFull is
	// returned if the batch would exceed MaxPoints.
	AddPoints(points [][]float32) error

	// Find streams stored points within radiusSquared (a SQUARED distance)
	// of query. See Store.Find.
	Find(ctx context.Context, query []float32, radiusSquared float32, optFns ...func(o *FindOptions)) (*Stream, error)

	// Count returns the number of stored points.
	Count() int

	// MemorySize returns the approximate number of bytes used by the stored points.
	MemorySize() int

	// Dimensions returns the fixed dimensionality.
	Dimensions() int
}

type erased[V point.Vector] struct {
	*Store[V]
}

func (e *erased[V]) AddPoints(points [][]float32) error {
	batch := make([]V, len(points))
	for i, p := range points {
		v, err := point.FromSlice[V](p)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		batch[i] = v
	}
	return e.append(batch)
}

func (e *erased[V]) Find(ctx context.Context, query []float32, radiusSquared float32, optFns ...func(o *FindOptions)) (*Stream, error) {
	if len(query) != e.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", point.ErrInvalidSize, e.dim, len(query))
	}
	return e.find(ctx, slices.Clone(query), radiusSquared, applyFindOptions(optFns)), nil
}
