// Package math32 provides float32 kernels for table reduction and
// template matching. This is an internal package - external users should
// go through the table and quantize packages.
package math32

// Sum returns the sum of all elements of a.
func Sum(a []float32) float32 {
	var s float32
	for _, v := range a {
		s += v
	}
	return s
}

// Chi2 calculates the symmetrized chi-squared statistic between two maps:
//
//	sum over cells of (a-b)^2 / (a+b)
//
// Cells where a+b == 0 contribute nothing. Both slices must have the same
// length; the caller guarantees this.
func Chi2(a, b []float32) float32 {
	var chi2 float32
	for i := range a {
		tot := a[i] + b[i]
		if tot == 0 {
			continue
		}
		d := a[i] - b[i]
		chi2 += d * d / tot
	}
	return chi2
}

// ScaleInPlace multiplies all elements of a by scalar.
//
// This is primarily used by map normalization.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// AddInPlace adds b element-wise into a.
//
// Used by template accumulation; a is the running sum.
func AddInPlace(a, b []float32) {
	for i := range a {
		a[i] += b[i]
	}
}

// SquaredL2 calculates the squared L2 distance between a and b.
func SquaredL2(a, b []float32) float32 {
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}
	return distance
}
