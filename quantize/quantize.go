// Package quantize implements the full-table compression pass: for every
// spatial-time bin, find the codebook template minimizing the chi-squared
// statistic against the bin's normalized angular map and record the
// (template index, total count) pair plus the achieved chi2.
//
// The search is embarrassingly parallel across bins. The table and codebook
// are immutable shared state; output slices are partitioned by contiguous bin
// range across a fixed worker pool, so no cell is ever written twice.
package quantize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phototab/phototab/codebook"
	"github.com/phototab/phototab/internal/math32"
	"github.com/phototab/phototab/table"
)

// SentinelIndex is the reserved template index assigned to bins with a zero
// marginal. Such bins carry no directional information; they decode to the
// zero map because their weight is zero.
const SentinelIndex = 0

var (
	// ErrGeometryMismatch is returned when the codebook's angular geometry
	// does not match the table's.
	ErrGeometryMismatch = errors.New("quantize: codebook angular geometry does not match table")
	// ErrTooManyTemplates is returned when the codebook cannot be addressed
	// with 16-bit indices.
	ErrTooManyTemplates = errors.New("quantize: codebook exceeds uint16 index range")
	// ErrEmptyCodebook is returned for a codebook with no templates.
	ErrEmptyCodebook = errors.New("quantize: codebook has no templates")
)

// Result holds the three per-bin output tables of one quantization pass, in
// row-major (r, theta, t) order.
type Result struct {
	Shape  table.Shape3
	Index  []uint16
	Weight []float32
	Chi2   []float32
}

// Options configures a Quantizer.
type Options struct {
	// Workers is the size of the worker pool. Defaults to GOMAXPROCS.
	Workers int

	// NormalizeTemplates selects the statistically self-consistent metric:
	// templates are normalized to sum 1 before comparison. The default (false)
	// reproduces the reference numeric behavior, which matches normalized bin
	// maps against raw accumulated template counts.
	NormalizeTemplates bool
}

// Quantizer performs the per-bin nearest-template search.
type Quantizer struct {
	opts Options
}

// New creates a Quantizer.
func New(optFns ...func(*Options)) *Quantizer {
	opts := Options{
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Quantizer{opts: opts}
}

// Quantize runs the full-table pass. Every spatial-time bin receives an
// index/weight/chi2 triple, training mask notwithstanding. On any error
// (including context cancellation) no partial result is returned.
func (q *Quantizer) Quantize(ctx context.Context, store *table.Store, cb *codebook.Codebook) (*Result, error) {
	shape := store.Shape()
	if cb.K() == 0 {
		return nil, ErrEmptyCodebook
	}
	if cb.K() > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: %d templates", ErrTooManyTemplates, cb.K())
	}
	if cb.ThetaDir() != shape.ThetaDir || cb.DeltaPhiDir() != shape.DeltaPhiDir {
		return nil, fmt.Errorf("%w: codebook (%d,%d), table %s",
			ErrGeometryMismatch, cb.ThetaDir(), cb.DeltaPhiDir(), shape)
	}

	if q.opts.NormalizeTemplates {
		cb = cb.Normalized()
	}

	bins := shape.SpatialBins()
	res := &Result{
		Shape:  shape.Spatial(),
		Index:  make([]uint16, bins),
		Weight: make([]float32, bins),
		Chi2:   make([]float32, bins),
	}

	marginals := store.Marginals()

	workers := q.opts.Workers
	if workers > bins {
		workers = bins
	}
	if workers == 0 {
		return res, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (bins + workers - 1) / workers

	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, bins)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			return q.quantizeRange(ctx, store, cb, marginals, res, lo, hi)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// quantizeRange processes bins [lo, hi). It owns those cells of the output
// tables exclusively.
func (q *Quantizer) quantizeRange(ctx context.Context, store *table.Store, cb *codebook.Codebook, marginals []float32, res *Result, lo, hi int) error {
	normed := make([]float32, cb.Cells())

	for bin := lo; bin < hi; bin++ {
		if bin%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		marginal := marginals[bin]
		if marginal == 0 {
			res.Index[bin] = SentinelIndex
			res.Weight[bin] = 0
			res.Chi2[bin] = 0
			continue
		}

		copy(normed, store.Raw(bin))
		math32.ScaleInPlace(normed, 1/marginal)

		best, chi2 := bestTemplate(normed, cb)
		res.Index[bin] = uint16(best)
		res.Weight[bin] = marginal
		res.Chi2[bin] = chi2
	}

	return nil
}

// bestTemplate returns the lowest-index template minimizing the chi-squared
// statistic against the normalized map.
func bestTemplate(normed []float32, cb *codebook.Codebook) (int, float32) {
	best := 0
	minChi2 := float32(math.MaxFloat32)
	for k := 0; k < cb.K(); k++ {
		chi2 := math32.Chi2(normed, cb.Template(k))
		if chi2 < minChi2 {
			minChi2 = chi2
			best = k
		}
	}
	return best, minChi2
}
