// Package vecsky provides an in-memory store of fixed-dimensional points with
// concurrent insertion and streaming radius queries.
//
// Points are grouped into named collections ("constellations") held by a Sky.
// A collection's dimensionality is inferred from the first vector added to it
// and must be one of the supported lengths listed by dimension.All.
//
// # Quick Start
//
//	ctx := context.Background()
//	sky := vecsky.New()
//
//	_ = sky.Add(ctx, "stars", []float32{1, 2, 3, 4, 5, 6})
//
//	// radiusSquared is a SQUARED Euclidean distance.
//	stream, err := sky.Query(ctx, "stars", 0.25, []float32{1, 2, 3, 4, 5, 6})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for m := range stream.All() {
//	    fmt.Println(m.Distance, m.Point)
//	}
//
// # Query Model
//
// A query is an exhaustive scan. It runs in parallel on background
// goroutines and streams matches through a bounded channel as they are found,
// so memory use during a query is bounded by the channel capacity. Results
// are not sorted. Closing the stream (or cancelling the context) stops the
// scan.
//
// # Errors
//
//   - *ErrInvalidSize: the vector length is not a supported dimensionality
//   - *ErrNotFound: Query names a collection that does not exist at that length
//   - ErrMemoryLimitExceeded: Add would exceed the resource controller's limit
//
// # Key Features
//
//   - Type-level dimensionality: each collection is a Store[[N]float32]
//   - Reader/writer locking per collection
//   - Backpressure and cancellation for streaming results
//   - Shared resource limits (memory, concurrent scans, query rate)
package vecsky
