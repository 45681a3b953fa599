// Package blobstore abstracts where table inputs and compression artifacts
// live: a local directory for workstation runs, an in-memory store for tests,
// or S3-compatible object storage for cluster batch jobs (see the minio
// subpackage).
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing immutable data blobs.
type Store interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a blob for streaming writes. The blob becomes visible
	// under its name only when Close returns nil; a run that dies mid-write
	// must never leave a readable partial artifact behind.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Exists reports whether a blob with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs that support zero-copy access.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// WritableBlob is a streaming write handle. Close commits the blob.
type WritableBlob interface {
	io.Writer
	io.Closer
}

// Reader returns a sequential reader over the whole blob.
func Reader(b Blob) io.Reader {
	return io.NewSectionReader(b, 0, b.Size())
}
