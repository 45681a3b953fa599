package kmeans

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrNoRows is returned when the feature matrix is empty.
var ErrNoRows = errors.New("kmeans: feature matrix has no rows")

// Train runs Lloyd's algorithm on the rows of features and returns the final
// centroids (k x dim) together with the per-row cluster assignments.
//
// The run is deterministic for a fixed seed: initialization draws k distinct
// rows via a seeded permutation and empty clusters are reseeded from the same
// source. If features has fewer rows than k the surplus centroids are filled
// by cycling over the available rows; the resulting clusters are simply empty.
func Train(ctx context.Context, features *mat.Dense, k int, seed int64, maxIter int) (*mat.Dense, []int, error) {
	n, dim := features.Dims()
	if n == 0 {
		return nil, nil, ErrNoRows
	}

	rng := rand.New(rand.NewSource(seed))

	centroids := mat.NewDense(k, dim, nil)
	if n < k {
		for i := 0; i < k; i++ {
			centroids.SetRow(i, features.RawRowView(i%n))
		}
	} else {
		perm := rng.Perm(n)
		for i := 0; i < k; i++ {
			centroids.SetRow(i, features.RawRowView(perm[i]))
		}
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := mat.NewDense(k, dim, nil)

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			best := nearest(features.RawRowView(i), centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		sums.Zero()
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			c := assignments[i]
			row := features.RawRowView(i)
			sum := sums.RawRowView(c)
			for d := 0; d < dim; d++ {
				sum[d] += row[d]
			}
			counts[c]++
		}

		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				scale := 1.0 / float64(counts[j])
				sum := sums.RawRowView(j)
				center := centroids.RawRowView(j)
				for d := 0; d < dim; d++ {
					center[d] = sum[d] * scale
				}
			} else {
				// Reseed empty cluster with a random row.
				centroids.SetRow(j, features.RawRowView(rng.Intn(n)))
			}
		}
	}

	// Final assignment against the last centroid update so that the returned
	// labels match the returned centroids.
	for i := 0; i < n; i++ {
		assignments[i] = nearest(features.RawRowView(i), centroids)
	}

	return centroids, assignments, nil
}

// Assign returns the index of the nearest centroid for every row of features.
// Ties resolve to the lowest centroid index.
func Assign(features *mat.Dense, centroids *mat.Dense) []int {
	n, _ := features.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = nearest(features.RawRowView(i), centroids)
	}
	return out
}

// nearest returns the lowest-index centroid minimizing squared Euclidean
// distance to vec.
func nearest(vec []float64, centroids *mat.Dense) int {
	k, _ := centroids.Dims()
	best := 0
	minDist := math.MaxFloat64

	for j := 0; j < k; j++ {
		center := centroids.RawRowView(j)
		var d float64
		for i := range vec {
			diff := vec[i] - center[i]
			d += diff * diff
		}
		if d < minDist {
			minDist = d
			best = j
		}
	}

	return best
}
