package codebook

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/internal/kmeans"
)

// Clusterer assigns each reduced-feature row to one of k clusters. It is the
// replaceable training subroutine of the codebook builder; the rest of the
// pipeline only ever sees the resulting assignments.
type Clusterer interface {
	Cluster(ctx context.Context, features *mat.Dense, k int) ([]int, error)
}

// FixedCentroids is a Clusterer backed by a precomputed centroid matrix
// (k rows, one per cluster). Each feature row is assigned the centroid
// nearest in squared Euclidean distance, ties to the lowest index.
type FixedCentroids struct {
	centroids *mat.Dense
}

// NewFixedCentroids wraps a precomputed centroid matrix. NaN entries are
// scrubbed to zero; externally computed centroid files routinely carry NaN
// rows for clusters that never converged.
func NewFixedCentroids(centroids mat.Matrix) *FixedCentroids {
	r, c := centroids.Dims()
	clean := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := centroids.At(i, j)
			if math.IsNaN(v) {
				v = 0
			}
			clean.Set(i, j, v)
		}
	}
	return &FixedCentroids{centroids: clean}
}

// K returns the number of centroids.
func (f *FixedCentroids) K() int {
	r, _ := f.centroids.Dims()
	return r
}

// Cluster implements Clusterer.
func (f *FixedCentroids) Cluster(ctx context.Context, features *mat.Dense, k int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k != f.K() {
		return nil, fmt.Errorf("codebook: centroid matrix has %d rows, want k=%d", f.K(), k)
	}
	_, fc := features.Dims()
	_, cc := f.centroids.Dims()
	if fc != cc {
		return nil, fmt.Errorf("codebook: feature dimension %d does not match centroid dimension %d", fc, cc)
	}
	return kmeans.Assign(features, f.centroids), nil
}

// KMeans is a Clusterer that trains centroids internally with seeded Lloyd's
// iterations. Reproducibility requires a fixed Seed.
type KMeans struct {
	Seed    int64
	MaxIter int
}

// Cluster implements Clusterer.
func (km *KMeans) Cluster(ctx context.Context, features *mat.Dense, k int) ([]int, error) {
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}
	_, assignments, err := kmeans.Train(ctx, features, k, km.Seed, maxIter)
	return assignments, err
}
