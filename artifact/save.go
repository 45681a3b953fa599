package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/phototab/phototab/blobstore"
)

// ErrArtifactExists is returned when an output blob is already present and
// no overwrite was requested. Reruns of a batch step must not silently
// clobber finished artifacts.
var ErrArtifactExists = errors.New("output artifact exists (rerun with overwrite to replace)")

// Save writes one artifact through the store. With overwrite false, an
// existing blob aborts cleanly before anything is written.
func Save(ctx context.Context, store blobstore.Store, name string, overwrite bool, write func(io.Writer) error) error {
	exists, err := store.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrArtifactExists, name)
	}

	wb, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(wb); err != nil {
		wb.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := wb.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// Load opens one blob and hands a sequential reader to read. Compressed
// inputs (.zst, .lz4) are transparently decompressed by name suffix.
func Load(ctx context.Context, store blobstore.Store, name string, read func(io.Reader) error) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	r, closeCodec, err := decompressor(name, blobstore.Reader(blob))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer closeCodec()

	if err := read(r); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}
