// Package testutil provides testing utilities for vecsky.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors and computing exact
// radius matches as ground truth.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 64) // uniform [0, 1)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.ExactRadius(query, vecs, radiusSquared)
package testutil
