package vecsky

import (
	"fmt"

	"github.com/hupe1980/vecsky/constellation"
	"github.com/hupe1980/vecsky/dimension"
	"github.com/hupe1980/vecsky/resource"
)

// ErrMemoryLimitExceeded is returned by Add when the configured memory limit
// would be exceeded. Nothing is added in that case.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

// ErrCollectionFull is returned by Add when a collection already holds the
// maximum number of points (constellation.MaxPoints).
var ErrCollectionFull = constellation.ErrFull

// ErrInvalidSize indicates a vector whose length is not in the supported
// dimensionality catalog (or a batch whose vectors differ in length).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidSize struct {
	Length int
	cause  error
}

func (e *ErrInvalidSize) Error() string {
	return fmt.Sprintf("a vector with length %d is not valid, valid sizes: %s", e.Length, dimension.Choices())
}

func (e *ErrInvalidSize) Unwrap() error { return e.cause }

// ErrNotFound indicates that no collection with the given name exists at the
// dimensionality implied by the query vector's length.
type ErrNotFound struct {
	Name   string
	Length int
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("a collection with the name %q and size %d does not exist", e.Name, e.Length)
}
