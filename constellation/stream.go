package constellation

import (
	"context"
	"iter"
)

// Match is a stored point within the query radius.
type Match struct {
	// Distance is the squared Euclidean distance to the query point.
	Distance float32
	// Point is a copy of the stored coordinates, owned by the receiver.
	Point []float32
	// Position is the insertion ordinal of the point within its store.
	// Stores are bounded by MaxPoints, so it never wraps.
	Position uint32
}

// Stream is the lazily consumed result of a Find call.
//
// Results are produced concurrently by the scan and delivered in arrival
// order. A Stream is consumed at most once. Callers that stop reading before
// the end should call Close (or cancel the context passed to Find) so the scan
// stops and its goroutines exit. A stream that is dropped without Close is
// stopped once the garbage collector finds it unreachable.
type Stream struct {
	ch     <-chan Match
	cancel context.CancelFunc
	done   <-chan struct{}
}

// C returns the receive side of the result channel. It is closed when the
// scan is finished or stopped.
func (s *Stream) C() <-chan Match {
	return s.ch
}

// Next blocks until the next match is available. It returns false once the
// stream has ended.
func (s *Stream) Next() (Match, bool) {
	m, ok := <-s.ch
	return m, ok
}

// All returns an iterator over the remaining matches.
// Breaking out of the loop closes the stream.
//
// Example:
//
//	for m := range stream.All() {
//	    fmt.Println(m.Distance, m.Point)
//	}
func (s *Stream) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for m := range s.ch {
			if !yield(m) {
				s.Close()
				return
			}
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream) Collect() []Match {
	var out []Match
	for m := range s.ch {
		out = append(out, m)
	}
	return out
}

// Close stops the scan and waits for it to exit. Unread matches are dropped.
// Close is safe to call multiple times and after the stream has ended.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the scan goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
