package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutOpenStat(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)

	ctx := context.Background()
	url, size, err := store.Put(ctx, "assets/2026/08/uuid/mix.wav", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, "http://localhost:8080/assets/assets/2026/08/uuid/mix.wav", url)

	info, err := store.Stat(ctx, "assets/2026/08/uuid/mix.wav")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	r, err := store.Open(ctx, "assets/2026/08/uuid/mix.wav")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStore_OpenRange(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = store.Put(ctx, "mix.wav", []byte("0123456789"))
	require.NoError(t, err)

	r, err := store.OpenRange(ctx, "mix.wav", 2, 5)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "234", string(data))
}

func TestLocalStore_NotFound(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)

	_, err = store.Stat(context.Background(), "missing.wav")
	require.Error(t, err)
}

func TestLocalStore_NoPartialWriteVisible(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = store.Put(ctx, "a/b/c.wav", []byte("first"))
	require.NoError(t, err)
	_, _, err = store.Put(ctx, "a/b/c.wav", []byte("second"))
	require.NoError(t, err)

	r, err := store.Open(ctx, "a/b/c.wav")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "audio/wav", contentType(".wav"))
	assert.Equal(t, "video/mp4", contentType(".mp4"))
	assert.Equal(t, "application/octet-stream", contentType(".unknown"))
}
