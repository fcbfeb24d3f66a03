// Package dimension defines the closed catalog of supported point lengths.
//
// Every Dimension maps to exactly one store type specialized to that length.
// Adding an entry requires extending point.Vector and the constellation
// builder together.
package dimension

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupported is returned for lengths outside the catalog.
var ErrUnsupported = errors.New("unsupported dimension")

// Dimension is a supported point length. Its value equals the length.
type Dimension uint16

const (
	D1    Dimension = 1
	D2    Dimension = 2
	D3    Dimension = 3
	D4    Dimension = 4
	D6    Dimension = 6
	D8    Dimension = 8
	D16   Dimension = 16
	D32   Dimension = 32
	D64   Dimension = 64
	D128  Dimension = 128
	D256  Dimension = 256
	D384  Dimension = 384
	D512  Dimension = 512
	D768  Dimension = 768
	D1024 Dimension = 1024
	D1536 Dimension = 1536
)

var catalog = []Dimension{
	D1, D2, D3, D4, D6, D8, D16, D32, D64, D128, D256, D384, D512, D768, D1024, D1536,
}

// All returns every supported dimension in ascending order.
func All() []Dimension {
	out := make([]Dimension, len(catalog))
	copy(out, catalog)
	return out
}

// Of returns the Dimension for a vector of length n.
func Of(n int) (Dimension, error) {
	if n <= 0 || n > int(D1536) {
		return 0, fmt.Errorf("%w: %d", ErrUnsupported, n)
	}
	d := Dimension(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupported, n)
	}
	return d, nil
}

// Valid reports whether d is part of the catalog.
func (d Dimension) Valid() bool {
	switch d {
	case D1, D2, D3, D4, D6, D8, D16, D32, D64, D128, D256, D384, D512, D768, D1024, D1536:
		return true
	default:
		return false
	}
}

// Len returns the number of coordinates of a point of this dimension.
func (d Dimension) Len() int {
	return int(d)
}

func (d Dimension) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Unknown(%d)", uint16(d))
	}
	return "D" + strconv.Itoa(int(d))
}

// Choices returns the supported lengths as a comma separated list.
func Choices() string {
	parts := make([]string, len(catalog))
	for i, d := range catalog {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ", ")
}
