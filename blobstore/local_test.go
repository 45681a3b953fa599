package blobstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	ok, err := store.Exists(ctx, "out/templates.ptc")
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := store.Create(ctx, "out/templates.ptc")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ok, err = store.Exists(ctx, "out/templates.ptc")
	require.NoError(t, err)
	assert.True(t, ok)

	b, err := store.Open(ctx, "out/templates.ptc")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(7), b.Size())

	got := make([]byte, 7)
	_, err = b.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	// Local blobs support zero-copy access.
	mb, ok2 := b.(Mappable)
	require.True(t, ok2)
	raw, err := mb.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), raw)
}

func TestLocalStoreNoPartialOnUnclosedWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	w, err := store.Create(ctx, "recmap.ptc")
	require.NoError(t, err)
	_, err = w.Write([]byte("half"))
	require.NoError(t, err)

	// Not closed: the final name must not exist yet.
	ok, err := store.Exists(ctx, "recmap.ptc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, w.Close())
	ok, err = store.Exists(ctx, "recmap.ptc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStoreOpenMissing(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(ctx, "absent.ptc")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "a", []byte{1, 2, 3}))

	ok, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	b, err := store.Open(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.Size())

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	w, err := store.Create(ctx, "b")
	require.NoError(t, err)
	_, err = w.Write([]byte("xy"))
	require.NoError(t, err)

	// Invisible until Close.
	ok, err = store.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, w.Close())
	ok, err = store.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReader(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a", []byte("sequential")))

	b, err := store.Open(ctx, "a")
	require.NoError(t, err)

	got := make([]byte, 10)
	n, err := Reader(b).Read(got)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "sequential", string(got))
}
