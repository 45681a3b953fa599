// Package table provides read-only typed views over the 5-D photon-count
// table: raw per-bin angular blocks, lazily computed marginals, normalized
// angular maps and the low-statistics training mask.
//
// The raw table is a single flat float32 arena addressed by index math; the
// Store owns it for the duration of a run and every view is either a subslice
// of the arena or a per-call copy, never a second full-table allocation.
package table

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/internal/math32"
)

// Store exposes read-only views over one raw 5-D photon table.
//
// All methods are safe for concurrent use once the Store is constructed; the
// arena is never mutated.
type Store struct {
	raw   []float32
	shape Shape5

	marginalOnce sync.Once
	marginals    []float32
}

// NewStore wraps a raw arena in a Store. The arena length must match the
// shape exactly; anything else is a fatal *ErrShapeMismatch.
func NewStore(raw []float32, shape Shape5) (*Store, error) {
	if !shape.Valid() || len(raw) != shape.Cells() {
		return nil, &ErrShapeMismatch{Shape: shape, Len: len(raw)}
	}
	return &Store{raw: raw, shape: shape}, nil
}

// Shape returns the table shape.
func (s *Store) Shape() Shape5 {
	return s.shape
}

// Raw returns the raw angular block of one spatial-time bin as a zero-copy
// subslice of the arena. Callers must not mutate it.
func (s *Store) Raw(bin int) []float32 {
	cells := s.shape.AngularCells()
	return s.raw[bin*cells : (bin+1)*cells]
}

// Marginal returns the total photon count of one spatial-time bin.
func (s *Store) Marginal(bin int) float32 {
	return s.Marginals()[bin]
}

// Marginals returns the marginal table, one total count per spatial-time bin.
// It is computed on first use and cached; the returned slice is shared and
// read-only.
func (s *Store) Marginals() []float32 {
	s.marginalOnce.Do(func() {
		bins := s.shape.SpatialBins()
		marginals := make([]float32, bins)
		for bin := 0; bin < bins; bin++ {
			marginals[bin] = math32.Sum(s.Raw(bin))
		}
		s.marginals = marginals
	})
	return s.marginals
}

// AngularMap returns one bin's angular map. The raw variant is a zero-copy
// view of the arena; the normalized variant is a fresh copy scaled to sum to
// 1. A zero marginal normalizes to the all-zero map, never NaN or Inf.
func (s *Store) AngularMap(bin int, normalized bool) []float32 {
	raw := s.Raw(bin)
	if !normalized {
		return raw
	}

	out := make([]float32, len(raw))
	marginal := s.Marginal(bin)
	if marginal == 0 {
		return out
	}
	copy(out, raw)
	math32.ScaleInPlace(out, 1/marginal)
	return out
}

// Mask returns the set of unmasked training bins: spatial-time bins whose
// marginal is at or above threshold. Bins below threshold carry too few
// photons to contribute meaningful shapes to the template library.
func (s *Store) Mask(threshold float32) *roaring.Bitmap {
	mask := roaring.New()
	for bin, marginal := range s.Marginals() {
		if marginal >= threshold {
			mask.Add(uint32(bin))
		}
	}
	return mask
}

// ValidateFeatures checks that the reduced-feature matrix carries exactly one
// row per unmasked bin. A mismatch is a fatal *ErrFeatureCountMismatch.
func (s *Store) ValidateFeatures(features mat.Matrix, mask *roaring.Bitmap) error {
	rows, _ := features.Dims()
	unmasked := int(mask.GetCardinality())
	if rows != unmasked {
		return &ErrFeatureCountMismatch{Rows: rows, Unmasked: unmasked}
	}
	return nil
}
