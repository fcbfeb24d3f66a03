package constellation

import (
	"fmt"

	"github.com/hupe1980/vecsky/dimension"
	"github.com/hupe1980/vecsky/point"
)

// Builder is an immutable fluent builder for dimension-specialized stores.
// Each method returns a new builder with the updated configuration.
//
// Example:
//
//	c, err := constellation.NewBuilder(dimension.D128).
//	    Capacity(10_000).
//	    Build()
type Builder struct {
	dim      dimension.Dimension
	capacity int
}

// NewBuilder creates a builder for stores of dimensionality d.
func NewBuilder(d dimension.Dimension) Builder {
	return Builder{dim: d}
}

// Capacity sets the number of points to preallocate room for.
// Default: 0.
func (b Builder) Capacity(n int) Builder {
	b.capacity = n
	return b
}

// Build constructs the store specialized to the builder's dimension.
func (b Builder) Build() (Constellation, error) {
	switch b.dim {
	case dimension.D1:
		return newErased[[1]float32](b.capacity), nil
	case dimension.D2:
		return newErased[[2]float32](b.capacity), nil
	case dimension.D3:
		return newErased[[3]float32](b.capacity), nil
	case dimension.D4:
		return newErased[[4]float32](b.capacity), nil
	case dimension.D6:
		return newErased[[6]float32](b.capacity), nil
	case dimension.D8:
		return newErased[[8]float32](b.capacity), nil
	case dimension.D16:
		return newErased[[16]float32](b.capacity), nil
	case dimension.D32:
		return newErased[[32]float32](b.capacity), nil
	case dimension.D64:
		return newErased[[64]float32](b.capacity), nil
	case dimension.D128:
		return newErased[[128]float32](b.capacity), nil
	case dimension.D256:
		return newErased[[256]float32](b.capacity), nil
	case dimension.D384:
		return newErased[[384]float32](b.capacity), nil
	case dimension.D512:
		return newErased[[512]float32](b.capacity), nil
	case dimension.D768:
		return newErased[[768]float32](b.capacity), nil
	case dimension.D1024:
		return newErased[[1024]float32](b.capacity), nil
	case dimension.D1536:
		return newErased[[1536]float32](b.capacity), nil
	default:
		return nil, fmt.Errorf("%w: %s", dimension.ErrUnsupported, b.dim)
	}
}

// MustBuild is like Build but panics on error.
func (b Builder) MustBuild() Constellation {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// Build constructs the store specialized to d.
func Build(d dimension.Dimension) (Constellation, error) {
	return NewBuilder(d).Build()
}

func newErased[V point.Vector](capacity int) Constellation {
	return &erased[V]{Store: NewStore[V](capacity)}
}
