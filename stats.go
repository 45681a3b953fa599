package phototab

import (
	"time"

	"github.com/phototab/phototab/artifact"
)

// StatsCollector receives per-phase measurements of a compression run.
// Implement this interface to integrate with a monitoring system; the
// pipeline itself only ever calls it, never reads it back.
type StatsCollector interface {
	// RecordLoad is called after the inputs are loaded.
	RecordLoad(bins, cells int, duration time.Duration)

	// RecordCodebook is called after the training pass.
	// empty is the number of templates that received no training bin.
	RecordCodebook(k, empty int, duration time.Duration)

	// RecordQuantization is called after the full-table pass.
	// zeroMarginal is the number of bins assigned the sentinel index.
	RecordQuantization(bins, zeroMarginal int, duration time.Duration)

	// RecordPersist is called after all artifacts are committed.
	RecordPersist(bytes int64, duration time.Duration)
}

// NoopStatsCollector is a no-op implementation of StatsCollector.
type NoopStatsCollector struct{}

func (NoopStatsCollector) RecordLoad(int, int, time.Duration)         {}
func (NoopStatsCollector) RecordCodebook(int, int, time.Duration)     {}
func (NoopStatsCollector) RecordQuantization(int, int, time.Duration) {}
func (NoopStatsCollector) RecordPersist(int64, time.Duration)         {}

// RunStats summarizes one completed compression run.
type RunStats struct {
	Bins             int
	AngularCells     int
	Clusters         int
	EmptyTemplates   int
	MaskedBins       int
	ZeroMarginalBins int
	CompressedBytes  int64
	RawBytes         int64
}

// Ratio returns the achieved compression ratio (raw size over compact size).
func (s *RunStats) Ratio() float64 {
	if s.CompressedBytes == 0 {
		return 0
	}
	return float64(s.RawBytes) / float64(s.CompressedBytes)
}

func computeSizes(bins, k, cells int) (compressed, raw int64) {
	return artifact.CompressedSize(bins, k, cells), artifact.RawSize(bins, cells)
}
