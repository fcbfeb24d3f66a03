package distance

// blockSize is the number of dimensions processed between early exit checks.
const blockSize = 64

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32

	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		ret += a[i]*b[i] + a[i+1]*b[i+1] + a[i+2]*b[i+2] + a[i+3]*b[i+3]
	}
	for ; i < n; i++ {
		ret += a[i] * b[i]
	}

	return ret
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}
	return distance
}

// SquaredL2Bounded computes squared L2 distance with early exit when exceeding bound.
// Returns (distance, exceeded) where exceeded=true means distance <= bound
// does not hold. A NaN distance or bound is always exceeded.
// When exceeded is true the returned distance is a partial sum.
//
// The early exit check is performed every 64 dimensions, so vectors shorter
// than that are always computed in full.
func SquaredL2Bounded(a, b []float32, bound float32) (float32, bool) {
	var distance float32

	n := len(a)
	i := 0
	for ; i+blockSize <= n; i += blockSize {
		for j := i; j < i+blockSize; j += 8 {
			d0 := a[j] - b[j]
			d1 := a[j+1] - b[j+1]
			d2 := a[j+2] - b[j+2]
			d3 := a[j+3] - b[j+3]
			d4 := a[j+4] - b[j+4]
			d5 := a[j+5] - b[j+5]
			d6 := a[j+6] - b[j+6]
			d7 := a[j+7] - b[j+7]
			distance += d0*d0 + d1*d1 + d2*d2 + d3*d3 + d4*d4 + d5*d5 + d6*d6 + d7*d7
		}
		if !(distance <= bound) {
			return distance, true
		}
	}

	for ; i < n; i++ {
		d := a[i] - b[i]
		distance += d * d
	}

	return distance, !(distance <= bound)
}
