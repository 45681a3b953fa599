package codebook

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/internal/math32"
	"github.com/phototab/phototab/table"
)

// Build runs the training pass: cluster the reduced-feature rows, then
// accumulate the raw angular map of every unmasked bin into its cluster's
// template.
//
// features must carry exactly one row per unmasked bin, in ascending bin
// order; anything else is a fatal error. Clusters that receive no bins stay
// all-zero, which downstream normalization maps to the zero distribution.
// For fixed inputs (and a deterministic clusterer) the result is
// bit-reproducible: accumulation follows ascending bin order.
func Build(ctx context.Context, store *table.Store, mask *roaring.Bitmap, features *mat.Dense, clusterer Clusterer, k int) (*Codebook, error) {
	if err := store.ValidateFeatures(features, mask); err != nil {
		return nil, err
	}

	labels, err := clusterer.Cluster(ctx, features, k)
	if err != nil {
		return nil, fmt.Errorf("cluster features: %w", err)
	}

	shape := store.Shape()
	cb := New(k, shape.ThetaDir, shape.DeltaPhiDir)

	row := 0
	it := mask.Iterator()
	for it.HasNext() {
		bin := int(it.Next())
		label := labels[row]
		if label < 0 || label >= k {
			return nil, fmt.Errorf("codebook: assignment %d for bin %d out of range [0,%d)", label, bin, k)
		}
		math32.AddInPlace(cb.Template(label), store.Raw(bin))
		row++
	}

	return cb, nil
}
