// Package point provides fixed-length float32 points.
//
// A point's dimensionality is part of its type: a store parameterized by
// [6]float32 can never hold a point of any other length.
package point

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a coordinate slice does not match the point length.
var ErrInvalidSize = errors.New("invalid point size")

// CoordinateSize is the size in bytes of one coordinate.
const CoordinateSize = 4

// Vector is the set of supported fixed-length point types.
// Keep in sync with the dimension catalog.
type Vector interface {
	~[1]float32 | ~[2]float32 | ~[3]float32 | ~[4]float32 |
		~[6]float32 | ~[8]float32 | ~[16]float32 | ~[32]float32 |
		~[64]float32 | ~[128]float32 | ~[256]float32 | ~[384]float32 |
		~[512]float32 | ~[768]float32 | ~[1024]float32 | ~[1536]float32
}

// Dim returns the number of coordinates of V.
func Dim[V Vector]() int {
	var v V
	return len(v)
}

// FromSlice builds a point of type V from values.
func FromSlice[V Vector](values []float32) (V, error) {
	var v V
	if len(values) != len(v) {
		return v, fmt.Errorf("%w: expected %d, got %d", ErrInvalidSize, len(v), len(values))
	}
	for i := 0; i < len(v); i++ {
		v[i] = values[i]
	}
	return v, nil
}

// MustFromSlice is like FromSlice but panics on error.
// Use this only in tests or with lengths checked by the caller.
func MustFromSlice[V Vector](values []float32) V {
	v, err := FromSlice[V](values)
	if err != nil {
		panic(err)
	}
	return v
}

// Slice returns the coordinates of v as a newly allocated slice.
func Slice[V Vector](v V) []float32 {
	return AppendTo(make([]float32, 0, len(v)), v)
}

// AppendTo appends the coordinates of v to dst.
func AppendTo[V Vector](dst []float32, v V) []float32 {
	for i := 0; i < len(v); i++ {
		dst = append(dst, v[i])
	}
	return dst
}
