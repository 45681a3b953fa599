// Package artifact defines the binary file formats for compression inputs
// and outputs: the raw 5-D table, the reduced-feature matrix, the template
// codebook, the per-bin record table and the chi2 diagnostic table.
//
// Every artifact is little-endian: a fixed 40-byte header (magic, version,
// kind, flags, dimensions, element count), the raw payload, then a CRC32
// (IEEE) trailer over header and payload. Payloads are written and read as
// raw slices, so encoding adds no per-element cost on top of I/O.
package artifact

import "errors"

const (
	// MagicNumber identifies phototab binary files (ASCII: "PTC0").
	MagicNumber = 0x50544330
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000
)

// Artifact kinds.
const (
	KindTable5D   = 1 // raw 5-D photon table, float32
	KindFeatures  = 2 // reduced-feature matrix, float64
	KindTemplates = 3 // codebook templates, float32
	KindRecords   = 4 // per-bin {index u16, weight f32} records
	KindChi2      = 5 // per-bin chi2 diagnostics, float32
)

// FlagNormalizedTemplates marks a template artifact whose templates were
// normalized before quantization; reconstruction must not renormalize twice
// differently from how matching was done.
const FlagNormalizedTemplates = 1 << 0

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrInvalidKind    = errors.New("unexpected artifact kind")
)

// FileHeader is the 40-byte header at the start of every artifact.
//
// Dim carries the artifact geometry: Shape5 for tables, (rows, cols) for
// feature matrices, (K, theta_dir, deltaphi_dir) for templates and Shape3
// for record/chi2 tables. Unused entries are zero. Count is the number of
// payload elements (not bytes).
type FileHeader struct {
	Magic   uint32
	Version uint32
	Kind    uint8
	Flags   uint8
	Pad     [2]byte
	Dim     [5]uint32
	Count   uint64
}

// RecordSize is the packed size of one {index u16, weight f32} record.
const RecordSize = 6

// CompressedSize returns the byte size of the compact representation:
// one record per spatial bin plus the codebook payload.
func CompressedSize(bins, k, cells int) int64 {
	return int64(bins)*RecordSize + int64(k)*int64(cells)*4
}

// RawSize returns the byte size of the uncompressed float32 table.
func RawSize(bins, cells int) int64 {
	return int64(bins) * int64(cells) * 4
}
