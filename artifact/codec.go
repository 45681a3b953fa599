package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/phototab/phototab/codebook"
	"github.com/phototab/phototab/quantize"
	"github.com/phototab/phototab/table"
)

// WriteTable5D writes a raw 5-D photon table.
func WriteTable5D(w io.Writer, shape table.Shape5, arena []float32) error {
	if len(arena) != shape.Cells() {
		return &table.ErrShapeMismatch{Shape: shape, Len: len(arena)}
	}
	bw := NewWriter(w)
	err := bw.WriteHeader(&FileHeader{
		Kind:  KindTable5D,
		Dim:   [5]uint32{uint32(shape.R), uint32(shape.Theta), uint32(shape.T), uint32(shape.ThetaDir), uint32(shape.DeltaPhiDir)},
		Count: uint64(len(arena)),
	})
	if err != nil {
		return err
	}
	if err := bw.WriteFloat32Slice(arena); err != nil {
		return err
	}
	return bw.Finish()
}

// ReadTable5D reads a raw 5-D photon table.
func ReadTable5D(r io.Reader) (table.Shape5, []float32, error) {
	br := NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return table.Shape5{}, nil, err
	}
	if header.Kind != KindTable5D {
		return table.Shape5{}, nil, fmt.Errorf("%w: got %d, want table", ErrInvalidKind, header.Kind)
	}
	shape := table.Shape5{
		R:           int(header.Dim[0]),
		Theta:       int(header.Dim[1]),
		T:           int(header.Dim[2]),
		ThetaDir:    int(header.Dim[3]),
		DeltaPhiDir: int(header.Dim[4]),
	}
	if !shape.Valid() || uint64(shape.Cells()) != header.Count {
		return table.Shape5{}, nil, &table.ErrShapeMismatch{Shape: shape, Len: int(header.Count)}
	}
	arena, err := br.ReadFloat32Slice(int(header.Count))
	if err != nil {
		return table.Shape5{}, nil, err
	}
	if err := br.Verify(); err != nil {
		return table.Shape5{}, nil, err
	}
	return shape, arena, nil
}

// WriteFeatures writes a reduced-feature matrix.
func WriteFeatures(w io.Writer, features *mat.Dense) error {
	rows, cols := features.Dims()
	bw := NewWriter(w)
	err := bw.WriteHeader(&FileHeader{
		Kind:  KindFeatures,
		Dim:   [5]uint32{uint32(rows), uint32(cols)},
		Count: uint64(rows * cols),
	})
	if err != nil {
		return err
	}
	raw := features.RawMatrix()
	if raw.Stride == cols {
		if err := bw.WriteFloat64Slice(raw.Data[:rows*cols]); err != nil {
			return err
		}
	} else {
		for i := 0; i < rows; i++ {
			if err := bw.WriteFloat64Slice(features.RawRowView(i)); err != nil {
				return err
			}
		}
	}
	return bw.Finish()
}

// ReadFeatures reads a reduced-feature matrix.
func ReadFeatures(r io.Reader) (*mat.Dense, error) {
	br := NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return nil, err
	}
	if header.Kind != KindFeatures {
		return nil, fmt.Errorf("%w: got %d, want features", ErrInvalidKind, header.Kind)
	}
	rows, cols := int(header.Dim[0]), int(header.Dim[1])
	data, err := br.ReadFloat64Slice(rows * cols)
	if err != nil {
		return nil, err
	}
	if err := br.Verify(); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, data), nil
}

// WriteTemplates writes a codebook. normalized marks templates that were
// normalized before quantization.
func WriteTemplates(w io.Writer, cb *codebook.Codebook, normalized bool) error {
	bw := NewWriter(w)
	var flags uint8
	if normalized {
		flags |= FlagNormalizedTemplates
	}
	err := bw.WriteHeader(&FileHeader{
		Kind:  KindTemplates,
		Flags: flags,
		Dim:   [5]uint32{uint32(cb.K()), uint32(cb.ThetaDir()), uint32(cb.DeltaPhiDir())},
		Count: uint64(len(cb.Data())),
	})
	if err != nil {
		return err
	}
	if err := bw.WriteFloat32Slice(cb.Data()); err != nil {
		return err
	}
	return bw.Finish()
}

// ReadTemplates reads a codebook; the boolean reports the normalized flag.
func ReadTemplates(r io.Reader) (*codebook.Codebook, bool, error) {
	br := NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return nil, false, err
	}
	if header.Kind != KindTemplates {
		return nil, false, fmt.Errorf("%w: got %d, want templates", ErrInvalidKind, header.Kind)
	}
	data, err := br.ReadFloat32Slice(int(header.Count))
	if err != nil {
		return nil, false, err
	}
	if err := br.Verify(); err != nil {
		return nil, false, err
	}
	cb, err := codebook.FromTemplates(data, int(header.Dim[0]), int(header.Dim[1]), int(header.Dim[2]))
	if err != nil {
		return nil, false, err
	}
	return cb, header.Flags&FlagNormalizedTemplates != 0, nil
}

// WriteRecords writes the compact per-bin encoding: one packed
// {index u16, weight f32} record per spatial-time bin, row-major (r, theta, t).
func WriteRecords(w io.Writer, res *quantize.Result) error {
	bins := res.Shape.Bins()
	if len(res.Index) != bins || len(res.Weight) != bins {
		return fmt.Errorf("artifact: record table length %d/%d does not match shape %s",
			len(res.Index), len(res.Weight), res.Shape)
	}

	bw := NewWriter(w)
	err := bw.WriteHeader(&FileHeader{
		Kind:  KindRecords,
		Dim:   [5]uint32{uint32(res.Shape.R), uint32(res.Shape.Theta), uint32(res.Shape.T)},
		Count: uint64(bins),
	})
	if err != nil {
		return err
	}

	buf := make([]byte, bins*RecordSize)
	for bin := 0; bin < bins; bin++ {
		off := bin * RecordSize
		binary.LittleEndian.PutUint16(buf[off:], res.Index[bin])
		binary.LittleEndian.PutUint32(buf[off+2:], math.Float32bits(res.Weight[bin]))
	}
	if err := bw.WriteBytes(buf); err != nil {
		return err
	}
	return bw.Finish()
}

// ReadRecords reads the compact per-bin encoding back into parallel
// index/weight tables.
func ReadRecords(r io.Reader) (table.Shape3, []uint16, []float32, error) {
	br := NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return table.Shape3{}, nil, nil, err
	}
	if header.Kind != KindRecords {
		return table.Shape3{}, nil, nil, fmt.Errorf("%w: got %d, want records", ErrInvalidKind, header.Kind)
	}
	shape := table.Shape3{R: int(header.Dim[0]), Theta: int(header.Dim[1]), T: int(header.Dim[2])}
	bins := int(header.Count)

	buf := make([]byte, bins*RecordSize)
	if err := br.ReadBytes(buf); err != nil {
		return table.Shape3{}, nil, nil, err
	}
	if err := br.Verify(); err != nil {
		return table.Shape3{}, nil, nil, err
	}

	index := make([]uint16, bins)
	weight := make([]float32, bins)
	for bin := 0; bin < bins; bin++ {
		off := bin * RecordSize
		index[bin] = binary.LittleEndian.Uint16(buf[off:])
		weight[bin] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+2:]))
	}
	return shape, index, weight, nil
}

// WriteChi2 writes the per-bin chi2 diagnostic table.
func WriteChi2(w io.Writer, shape table.Shape3, chi2 []float32) error {
	if len(chi2) != shape.Bins() {
		return fmt.Errorf("artifact: chi2 table length %d does not match shape %s", len(chi2), shape)
	}
	bw := NewWriter(w)
	err := bw.WriteHeader(&FileHeader{
		Kind:  KindChi2,
		Dim:   [5]uint32{uint32(shape.R), uint32(shape.Theta), uint32(shape.T)},
		Count: uint64(len(chi2)),
	})
	if err != nil {
		return err
	}
	if err := bw.WriteFloat32Slice(chi2); err != nil {
		return err
	}
	return bw.Finish()
}

// ReadChi2 reads the per-bin chi2 diagnostic table.
func ReadChi2(r io.Reader) (table.Shape3, []float32, error) {
	br := NewReader(r)
	header, err := br.ReadHeader()
	if err != nil {
		return table.Shape3{}, nil, err
	}
	if header.Kind != KindChi2 {
		return table.Shape3{}, nil, fmt.Errorf("%w: got %d, want chi2", ErrInvalidKind, header.Kind)
	}
	shape := table.Shape3{R: int(header.Dim[0]), Theta: int(header.Dim[1]), T: int(header.Dim[2])}
	chi2, err := br.ReadFloat32Slice(int(header.Count))
	if err != nil {
		return table.Shape3{}, nil, err
	}
	if err := br.Verify(); err != nil {
		return table.Shape3{}, nil, err
	}
	return shape, chi2, nil
}
