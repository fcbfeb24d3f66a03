// Package distance provides the float32 vector arithmetic used by the query engine.
//
// # Supported Operations
//
//   - SquaredL2: squared Euclidean distance (no square root)
//   - SquaredL2Bounded: squared Euclidean distance with early exit above a bound
//   - Dot: inner product
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	d, exceeded := distance.SquaredL2Bounded(a, b, radiusSquared)
package distance
