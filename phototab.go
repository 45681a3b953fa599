package phototab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/artifact"
	"github.com/phototab/phototab/blobstore"
	"github.com/phototab/phototab/codebook"
	"github.com/phototab/phototab/internal/math32"
	"github.com/phototab/phototab/quantize"
	"github.com/phototab/phototab/table"
)

// ErrMissingInput is returned when a required input artifact name is empty.
var ErrMissingInput = errors.New("missing required input artifact")

// InputNames holds the blob names of the run inputs. Table and Features are
// required; Centroids optionally supplies a precomputed (K x F) centroid
// matrix, which replaces internal k-means training and fixes K.
type InputNames struct {
	Table     string
	Features  string
	Centroids string
}

// Pipeline runs the whole compression job: load, train, quantize, persist.
// A Pipeline is immutable after construction and safe to reuse across runs.
type Pipeline struct {
	opts options
}

// New creates a Pipeline.
func New(optFns ...Option) *Pipeline {
	opts := options{
		logger:        NewLogger(nil),
		stats:         NoopStatsCollector{},
		clusters:      4000,
		maxIter:       100,
		maskThreshold: 1000,
		out:           DefaultOutputNames(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pipeline{opts: opts}
}

// Run executes one compression job against the given store. Any fatal error
// aborts before output artifacts become visible; there are no partial runs.
func (p *Pipeline) Run(ctx context.Context, store blobstore.Store, in InputNames) (*RunStats, error) {
	logger := p.opts.logger

	if in.Table == "" || in.Features == "" {
		return nil, fmt.Errorf("%w: need table and features", ErrMissingInput)
	}

	// Refuse the run up front if any output is already present. The saves
	// below then overwrite unconditionally, so a committed templates file is
	// never followed by an aborted records file.
	if !p.opts.overwrite {
		for _, name := range []string{p.opts.out.Templates, p.opts.out.Records, p.opts.out.Chi2} {
			exists, err := store.Exists(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", name, err)
			}
			if exists {
				return nil, fmt.Errorf("%w: %s", artifact.ErrArtifactExists, name)
			}
		}
	}

	loadStart := time.Now()

	var (
		shape table.Shape5
		arena []float32
	)
	err := artifact.Load(ctx, store, in.Table, func(r io.Reader) error {
		var err error
		shape, arena, err = artifact.ReadTable5D(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	tab, err := table.NewStore(arena, shape)
	if err != nil {
		return nil, err
	}
	logger.WithShape(shape).InfoContext(ctx, "table loaded", "bins", shape.SpatialBins())

	var features *mat.Dense
	err = artifact.Load(ctx, store, in.Features, func(r io.Reader) error {
		var err error
		features, err = artifact.ReadFeatures(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	clusterer, k, err := p.clusterer(ctx, store, in)
	if err != nil {
		return nil, err
	}

	p.opts.stats.RecordLoad(shape.SpatialBins(), shape.AngularCells(), time.Since(loadStart))

	trainStart := time.Now()
	mask := tab.Mask(p.opts.maskThreshold)
	logger.InfoContext(ctx, "training mask built",
		"threshold", p.opts.maskThreshold,
		"unmasked", mask.GetCardinality(),
		"bins", shape.SpatialBins(),
	)

	cb, err := codebook.Build(ctx, tab, mask, features, clusterer, k)
	if err != nil {
		return nil, err
	}

	empty := 0
	for i := 0; i < cb.K(); i++ {
		if math32.Sum(cb.Template(i)) == 0 {
			empty++
		}
	}
	p.opts.stats.RecordCodebook(k, empty, time.Since(trainStart))
	logger.WithClusters(k).InfoContext(ctx, "codebook built", "empty_templates", empty)

	quantStart := time.Now()
	q := quantize.New(func(o *quantize.Options) {
		if p.opts.workers > 0 {
			o.Workers = p.opts.workers
		}
		o.NormalizeTemplates = p.opts.normalizeTemplates
	})
	res, err := q.Quantize(ctx, tab, cb)
	if err != nil {
		return nil, err
	}

	zeroMarginal := 0
	for _, w := range res.Weight {
		if w == 0 {
			zeroMarginal++
		}
	}
	p.opts.stats.RecordQuantization(len(res.Index), zeroMarginal, time.Since(quantStart))
	logger.InfoContext(ctx, "indices found",
		"bins", len(res.Index),
		"zero_marginal", zeroMarginal,
	)

	persistStart := time.Now()
	if err := p.persist(ctx, store, cb, res); err != nil {
		return nil, err
	}

	stats := &RunStats{
		Bins:             shape.SpatialBins(),
		AngularCells:     shape.AngularCells(),
		Clusters:         k,
		EmptyTemplates:   empty,
		MaskedBins:       shape.SpatialBins() - int(mask.GetCardinality()),
		ZeroMarginalBins: zeroMarginal,
	}
	stats.CompressedBytes, stats.RawBytes = computeSizes(stats.Bins, k, stats.AngularCells)
	p.opts.stats.RecordPersist(stats.CompressedBytes, time.Since(persistStart))

	logger.InfoContext(ctx, "run complete",
		"compressed_bytes", stats.CompressedBytes,
		"raw_bytes", stats.RawBytes,
		"ratio", stats.Ratio(),
	)

	return stats, nil
}

// clusterer resolves the training subroutine for this run.
func (p *Pipeline) clusterer(ctx context.Context, store blobstore.Store, in InputNames) (codebook.Clusterer, int, error) {
	if in.Centroids != "" {
		var centroids *mat.Dense
		err := artifact.Load(ctx, store, in.Centroids, func(r io.Reader) error {
			var err error
			centroids, err = artifact.ReadFeatures(r)
			return err
		})
		if err != nil {
			return nil, 0, err
		}
		fixed := codebook.NewFixedCentroids(centroids)
		return fixed, fixed.K(), nil
	}

	if p.opts.clusterer != nil {
		return p.opts.clusterer, p.opts.clusters, nil
	}
	return &codebook.KMeans{Seed: p.opts.seed, MaxIter: p.opts.maxIter}, p.opts.clusters, nil
}

func (p *Pipeline) persist(ctx context.Context, store blobstore.Store, cb *codebook.Codebook, res *quantize.Result) error {
	// Persist what the quantizer actually matched against.
	if p.opts.normalizeTemplates {
		cb = cb.Normalized()
	}

	// Existence was checked up front; save unconditionally.
	if err := artifact.Save(ctx, store, p.opts.out.Templates, true, func(w io.Writer) error {
		return artifact.WriteTemplates(w, cb, p.opts.normalizeTemplates)
	}); err != nil {
		return err
	}
	if err := artifact.Save(ctx, store, p.opts.out.Records, true, func(w io.Writer) error {
		return artifact.WriteRecords(w, res)
	}); err != nil {
		return err
	}
	return artifact.Save(ctx, store, p.opts.out.Chi2, true, func(w io.Writer) error {
		return artifact.WriteChi2(w, res.Shape, res.Chi2)
	})
}
