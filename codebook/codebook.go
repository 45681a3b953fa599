// Package codebook builds and represents the template library: K canonical
// angular photon-distribution maps learned from high-statistics table bins.
//
// Templates are stored raw (unnormalized accumulated counts). The builder
// clusters externally supplied reduced features, then sums the raw angular
// map of every training bin into its cluster's template. Clustering itself is
// pluggable; see Clusterer.
package codebook

import (
	"errors"
	"fmt"

	"github.com/phototab/phototab/internal/math32"
)

// ErrTemplateSize is returned when a template payload length does not match
// the declared codebook geometry.
var ErrTemplateSize = errors.New("codebook: template payload length mismatch")

// Codebook is an ordered, immutable set of K raw angular-map templates.
// Template index 0 doubles as the sentinel for empty bins, so a codebook
// always has at least one entry.
type Codebook struct {
	templates   []float32 // flat, k * cells
	k           int
	thetaDir    int
	deltaPhiDir int
}

// New returns a codebook of k all-zero templates with the given angular
// geometry.
func New(k, thetaDir, deltaPhiDir int) *Codebook {
	return &Codebook{
		templates:   make([]float32, k*thetaDir*deltaPhiDir),
		k:           k,
		thetaDir:    thetaDir,
		deltaPhiDir: deltaPhiDir,
	}
}

// FromTemplates wraps an existing flat template payload (k * thetaDir *
// deltaPhiDir, row-major) in a Codebook.
func FromTemplates(data []float32, k, thetaDir, deltaPhiDir int) (*Codebook, error) {
	if len(data) != k*thetaDir*deltaPhiDir {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTemplateSize, len(data), k*thetaDir*deltaPhiDir)
	}
	return &Codebook{
		templates:   data,
		k:           k,
		thetaDir:    thetaDir,
		deltaPhiDir: deltaPhiDir,
	}, nil
}

// K returns the number of templates.
func (c *Codebook) K() int {
	return c.k
}

// ThetaDir returns the theta_dir extent of each template.
func (c *Codebook) ThetaDir() int {
	return c.thetaDir
}

// DeltaPhiDir returns the deltaphi_dir extent of each template.
func (c *Codebook) DeltaPhiDir() int {
	return c.deltaPhiDir
}

// Cells returns the number of cells per template.
func (c *Codebook) Cells() int {
	return c.thetaDir * c.deltaPhiDir
}

// Template returns template i as a zero-copy view. Callers must not mutate it.
func (c *Codebook) Template(i int) []float32 {
	cells := c.Cells()
	return c.templates[i*cells : (i+1)*cells]
}

// Data returns the flat template payload. Callers must not mutate it.
func (c *Codebook) Data() []float32 {
	return c.templates
}

// Normalized returns a new codebook whose templates each sum to 1. An
// all-zero template (empty cluster) stays all-zero, by the same convention as
// zero-marginal bins.
func (c *Codebook) Normalized() *Codebook {
	out := New(c.k, c.thetaDir, c.deltaPhiDir)
	copy(out.templates, c.templates)
	for i := 0; i < c.k; i++ {
		tpl := out.Template(i)
		if sum := math32.Sum(tpl); sum > 0 {
			math32.ScaleInPlace(tpl, 1/sum)
		}
	}
	return out
}

// Reconstruct returns the approximate raw angular map encoded by an
// (index, weight) pair: weight times the normalized template.
func (c *Codebook) Reconstruct(index uint16, weight float32) []float32 {
	tpl := c.Template(int(index))
	out := make([]float32, len(tpl))
	sum := math32.Sum(tpl)
	if sum == 0 || weight == 0 {
		return out
	}
	copy(out, tpl)
	math32.ScaleInPlace(out, weight/sum)
	return out
}
