package codebook

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZeroTemplates(t *testing.T) {
	cb := New(3, 2, 2)
	assert.Equal(t, 3, cb.K())
	assert.Equal(t, 4, cb.Cells())
	assert.Equal(t, make([]float32, 12), cb.Data())
}

func TestFromTemplates(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	cb, err := FromTemplates(data, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, cb.Template(0))
	assert.Equal(t, []float32{5, 6, 7, 8}, cb.Template(1))

	_, err = FromTemplates(data, 3, 2, 2)
	assert.ErrorIs(t, err, ErrTemplateSize)
}

func TestNormalized(t *testing.T) {
	cb, err := FromTemplates([]float32{
		1, 1, 2, 0, // sums to 4
		0, 0, 0, 0, // empty cluster
	}, 2, 2, 2)
	require.NoError(t, err)

	norm := cb.Normalized()
	assert.InDeltaSlice(t, []float32{0.25, 0.25, 0.5, 0}, norm.Template(0), 1e-6)

	// Empty cluster normalizes to the zero map, no NaN.
	for _, v := range norm.Template(1) {
		assert.False(t, math.IsNaN(float64(v)))
		assert.Equal(t, float32(0), v)
	}

	// Source codebook untouched.
	assert.Equal(t, []float32{1, 1, 2, 0}, cb.Template(0))
}

func TestReconstruct(t *testing.T) {
	cb, err := FromTemplates([]float32{
		2, 2, 4, 0,
		0, 0, 0, 0,
	}, 2, 2, 2)
	require.NoError(t, err)

	// weight * normalize(template)
	got := cb.Reconstruct(0, 16)
	assert.InDeltaSlice(t, []float32{4, 4, 8, 0}, got, 1e-5)

	// Sentinel reconstruction from the empty template stays zero.
	assert.Equal(t, []float32{0, 0, 0, 0}, cb.Reconstruct(1, 16))
	assert.Equal(t, []float32{0, 0, 0, 0}, cb.Reconstruct(0, 0))
}
