// Package storage provides the content-addressed blob abstraction the
// Renderer and Asset writer use, generalized from the teacher's
// audio-specific S3Uploader into a generic keyed store (spec.md §4.1).
package storage

import (
	"context"
	"io"
	"time"
)

// Info is the result of a Stat call.
type Info struct {
	Size  int64
	Mtime time.Time
}

// Store exposes content-addressed blob writes, public URL minting, and
// range reads. Keys are POSIX-style relative paths; a leading "/" is
// stripped by implementations. Writes are create-or-overwrite; no partial
// writes are ever visible to a reader.
type Store interface {
	// Put writes data under key and returns its public URL and size.
	Put(ctx context.Context, key string, data []byte) (url string, size int64, err error)
	// PutStream writes from reader under key and returns its public URL and size.
	PutStream(ctx context.Context, key string, reader io.Reader) (url string, size int64, err error)
	// Open returns a sequential reader for key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// OpenRange returns a bounded reader over [start, end) of key.
	OpenRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error)
	// Stat returns size and modification time for key.
	Stat(ctx context.Context, key string) (Info, error)
	// ResolvePath returns a local filesystem path for key, if the backend
	// is local-disk-backed; implementations that are not return "".
	ResolvePath(key string) string
}
