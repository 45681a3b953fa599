package artifact

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Raw tables arrive from the simulation stage compressed; which codec is
// keyed by name suffix. Outputs are always written plain: quantization is
// the compression mechanism, and the record format gains little from a
// second entropy stage.

// decompressor wraps r according to the blob name. The returned func
// releases codec resources and must be called after reading.
func decompressor(name string, r io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case strings.HasSuffix(name, ".lz4"):
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}
