package artifact

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"
)

// Writer emits one artifact: header, payload, CRC32 trailer.
type Writer struct {
	w         io.Writer
	cw        *ChecksumWriter
	byteOrder binary.ByteOrder
}

// NewWriter creates an artifact writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:         w,
		cw:        NewChecksumWriter(w),
		byteOrder: binary.LittleEndian,
	}
}

// WriteHeader writes the file header, forcing magic and version.
func (bw *Writer) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw.cw, bw.byteOrder, header)
}

// WriteFloat32Slice writes a float32 slice as raw bytes (zero-copy).
func (bw *Writer) WriteFloat32Slice(vec []float32) error {
	if len(vec) == 0 {
		return nil
	}
	if err := validateAlignment(uintptr(unsafe.Pointer(&vec[0])), 4); err != nil {
		return err
	}
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*4)
	_, err := bw.cw.Write(byteSlice)
	return err
}

// WriteFloat64Slice writes a float64 slice as raw bytes (zero-copy).
func (bw *Writer) WriteFloat64Slice(vec []float64) error {
	if len(vec) == 0 {
		return nil
	}
	if err := validateAlignment(uintptr(unsafe.Pointer(&vec[0])), 8); err != nil {
		return err
	}
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*8)
	_, err := bw.cw.Write(byteSlice)
	return err
}

// WriteBytes writes raw bytes into the checksummed stream.
func (bw *Writer) WriteBytes(p []byte) error {
	_, err := bw.cw.Write(p)
	return err
}

// Finish writes the CRC32 trailer. The artifact is not valid without it.
func (bw *Writer) Finish() error {
	return binary.Write(bw.w, bw.byteOrder, bw.cw.Sum())
}

// Reader consumes one artifact written by Writer.
type Reader struct {
	r         io.Reader
	cr        *ChecksumReader
	byteOrder binary.ByteOrder
}

// NewReader creates an artifact reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:         r,
		cr:        NewChecksumReader(r),
		byteOrder: binary.LittleEndian,
	}
}

// ReadHeader reads and validates the file header.
func (br *Reader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br.cr, br.byteOrder, &header); err != nil {
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ReadFloat32Slice reads count float32 values.
func (br *Reader) ReadFloat32Slice(count int) ([]float32, error) {
	if count == 0 {
		return nil, nil
	}
	vec := make([]float32, count)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), count*4)
	if _, err := io.ReadFull(br.cr, byteSlice); err != nil {
		return nil, err
	}
	return vec, nil
}

// ReadFloat64Slice reads count float64 values.
func (br *Reader) ReadFloat64Slice(count int) ([]float64, error) {
	if count == 0 {
		return nil, nil
	}
	vec := make([]float64, count)
	byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), count*8)
	if _, err := io.ReadFull(br.cr, byteSlice); err != nil {
		return nil, err
	}
	return vec, nil
}

// ReadBytes reads exactly len(p) bytes from the checksummed stream.
func (br *Reader) ReadBytes(p []byte) error {
	_, err := io.ReadFull(br.cr, p)
	return err
}

// Verify reads the CRC32 trailer and checks it against the consumed stream.
func (br *Reader) Verify() error {
	// The trailer itself is read outside the checksummed stream.
	sum := br.cr.Sum()
	var expected uint32
	if err := binary.Read(br.r, br.byteOrder, &expected); err != nil {
		return err
	}
	if expected != sum {
		return &ChecksumMismatchError{Expected: expected, Actual: sum}
	}
	return nil
}
