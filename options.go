package phototab

import (
	"github.com/phototab/phototab/codebook"
)

// OutputNames holds the blob names of the three persisted artifacts.
type OutputNames struct {
	Templates string
	Records   string
	Chi2      string
}

// DefaultOutputNames mirrors the conventional artifact layout of a run
// directory.
func DefaultOutputNames() OutputNames {
	return OutputNames{
		Templates: "templates.ptc",
		Records:   "recmap.ptc",
		Chi2:      "chi2.ptc",
	}
}

type options struct {
	logger             *Logger
	stats              StatsCollector
	clusterer          codebook.Clusterer
	clusters           int
	seed               int64
	maxIter            int
	workers            int
	maskThreshold      float32
	normalizeTemplates bool
	overwrite          bool
	out                OutputNames
}

// Option configures Pipeline construction.
type Option func(*options)

// WithLogger sets the structured logger. Defaults to a text logger on stderr.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatsCollector sets the run statistics sink.
func WithStatsCollector(c StatsCollector) Option {
	return func(o *options) {
		if c != nil {
			o.stats = c
		}
	}
}

// WithClusters sets the codebook size K. Ignored when a precomputed centroid
// matrix is supplied, which fixes K to its row count.
func WithClusters(k int) Option {
	return func(o *options) {
		o.clusters = k
	}
}

// WithClusterer replaces the training subroutine. Defaults to seeded k-means;
// a precomputed centroid input overrides this as well.
func WithClusterer(c codebook.Clusterer) Option {
	return func(o *options) {
		o.clusterer = c
	}
}

// WithSeed sets the k-means seed. Runs with identical inputs and seed are
// bit-reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMaxIter caps the number of k-means iterations.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithWorkers sets the quantizer worker-pool size. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaskThreshold sets the training statistics threshold: bins whose
// marginal falls below it are excluded from template training (their shapes
// are dominated by sampling noise) but still quantized in the full pass.
func WithMaskThreshold(threshold float32) Option {
	return func(o *options) {
		o.maskThreshold = threshold
	}
}

// WithNormalizedTemplates switches the quantizer to the statistically
// self-consistent metric (templates normalized before comparison). The
// default reproduces the reference numeric behavior; see quantize.Options.
func WithNormalizedTemplates() Option {
	return func(o *options) {
		o.normalizeTemplates = true
	}
}

// WithOverwrite allows replacing existing output artifacts. Without it, a
// rerun into a populated output location aborts before writing anything.
func WithOverwrite() Option {
	return func(o *options) {
		o.overwrite = true
	}
}

// WithOutputNames overrides the artifact blob names.
func WithOutputNames(out OutputNames) Option {
	return func(o *options) {
		o.out = out
	}
}
