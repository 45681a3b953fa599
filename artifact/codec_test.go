package artifact

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/codebook"
	"github.com/phototab/phototab/quantize"
	"github.com/phototab/phototab/table"
)

func TestTable5DRoundTrip(t *testing.T) {
	shape := table.Shape5{R: 2, Theta: 1, T: 1, ThetaDir: 2, DeltaPhiDir: 2}
	arena := []float32{1, 2, 3, 4, 5, 6, 7, 8}

	var buf bytes.Buffer
	require.NoError(t, WriteTable5D(&buf, shape, arena))

	gotShape, gotArena, err := ReadTable5D(&buf)
	require.NoError(t, err)
	assert.Equal(t, shape, gotShape)
	assert.Equal(t, arena, gotArena)
}

func TestTable5DShapeMismatch(t *testing.T) {
	shape := table.Shape5{R: 2, Theta: 1, T: 1, ThetaDir: 2, DeltaPhiDir: 2}
	var buf bytes.Buffer
	err := WriteTable5D(&buf, shape, make([]float32, 3))
	var sm *table.ErrShapeMismatch
	assert.ErrorAs(t, err, &sm)
}

func TestFeaturesRoundTrip(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, features))

	got, err := ReadFeatures(&buf)
	require.NoError(t, err)
	assert.True(t, mat.Equal(features, got))
}

func TestTemplatesRoundTrip(t *testing.T) {
	cb, err := codebook.FromTemplates([]float32{1, 0, 2, 0, 0, 3, 0, 4}, 2, 2, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTemplates(&buf, cb, true))

	got, normalized, err := ReadTemplates(&buf)
	require.NoError(t, err)
	assert.True(t, normalized)
	assert.Equal(t, cb.Data(), got.Data())
	assert.Equal(t, 2, got.K())
	assert.Equal(t, 2, got.ThetaDir())
	assert.Equal(t, 2, got.DeltaPhiDir())
}

func TestRecordsRoundTrip(t *testing.T) {
	res := &quantize.Result{
		Shape:  table.Shape3{R: 2, Theta: 2, T: 1},
		Index:  []uint16{0, 7, 65535, 3},
		Weight: []float32{0, 1.5, 2.25, 1e9},
		Chi2:   []float32{0, 0.1, 0.2, 0.3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, res))

	// spatial_bins * 6 bytes of payload plus header and trailer.
	assert.Equal(t, 40+4*RecordSize+4, buf.Len())

	shape, index, weight, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Shape, shape)
	assert.Equal(t, res.Index, index)
	assert.Equal(t, res.Weight, weight)
}

func TestChi2RoundTrip(t *testing.T) {
	shape := table.Shape3{R: 1, Theta: 3, T: 1}
	chi2 := []float32{0, 1.5, 0.25}

	var buf bytes.Buffer
	require.NoError(t, WriteChi2(&buf, shape, chi2))

	gotShape, got, err := ReadChi2(&buf)
	require.NoError(t, err)
	assert.Equal(t, shape, gotShape)
	assert.Equal(t, chi2, got)
}

// TestEncoderIdempotence verifies that encoding the same result twice
// produces byte-identical artifacts.
func TestEncoderIdempotence(t *testing.T) {
	res := &quantize.Result{
		Shape:  table.Shape3{R: 1, Theta: 2, T: 1},
		Index:  []uint16{1, 0},
		Weight: []float32{3, 0},
		Chi2:   []float32{0.5, 0},
	}

	var a, b bytes.Buffer
	require.NoError(t, WriteRecords(&a, res))
	require.NoError(t, WriteRecords(&b, res))
	assert.Equal(t, a.Bytes(), b.Bytes())

	cb := codebook.New(2, 1, 2)
	a.Reset()
	b.Reset()
	require.NoError(t, WriteTemplates(&a, cb, false))
	require.NoError(t, WriteTemplates(&b, cb, false))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestCorruptionDetected(t *testing.T) {
	shape := table.Shape3{R: 1, Theta: 1, T: 1}
	var buf bytes.Buffer
	require.NoError(t, WriteChi2(&buf, shape, []float32{42}))

	raw := buf.Bytes()
	raw[len(raw)-6] ^= 0xff // flip a payload byte

	_, _, err := ReadChi2(bytes.NewReader(raw))
	var cm *ChecksumMismatchError
	assert.ErrorAs(t, err, &cm)
}

func TestWrongMagic(t *testing.T) {
	_, _, err := ReadChi2(bytes.NewReader(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestWrongKind(t *testing.T) {
	shape := table.Shape3{R: 1, Theta: 1, T: 1}
	var buf bytes.Buffer
	require.NoError(t, WriteChi2(&buf, shape, []float32{1}))

	_, _, _, err := ReadRecords(&buf)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

// TestCompressionArithmetic checks the headline property: the compact output
// is strictly smaller than the raw table for realistic K << spatial_bins.
func TestCompressionArithmetic(t *testing.T) {
	const (
		bins  = 200 * 100 * 300 // spatial bins
		k     = 4000
		cells = 40 * 40
	)
	compressed := CompressedSize(bins, k, cells)
	raw := RawSize(bins, cells)
	assert.Less(t, compressed, raw)
	// Order-of-magnitude reduction, not a marginal one.
	assert.Greater(t, raw/compressed, int64(100))
}
