package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/musewave/backend/internal/errors"
)

// LocalStore is a filesystem-backed Store rooted at a base directory. Writes
// go to a temp file in the same directory then rename, so a reader never
// observes a partially-written object — the local analogue of the remote
// backend's single atomic PUT.
type LocalStore struct {
	root    string
	baseURL string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates a LocalStore rooted at root, minting URLs under
// baseURL (e.g. "http://localhost:8080/assets").
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating root %s: %w", root, err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func cleanKey(key string) string {
	return strings.TrimPrefix(filepath.Clean("/"+key), "/")
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, cleanKey(key))
}

func (s *LocalStore) url(key string) string {
	return s.baseURL + "/" + cleanKey(key)
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte) (string, int64, error) {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	tmp := dst + ".tmp-" + uuid.New().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	return s.url(key), int64(len(data)), nil
}

func (s *LocalStore) PutStream(ctx context.Context, key string, reader io.Reader) (string, int64, error) {
	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	tmp := dst + ".tmp-" + uuid.New().String()
	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	size, err := io.Copy(f, reader)
	closeErr := f.Close()
	if err != nil || closeErr != nil {
		os.Remove(tmp)
		if err == nil {
			err = closeErr
		}
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	return s.url(key), size, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, apperrors.NotFound("asset")
	}
	if err != nil {
		return nil, apperrors.StorageUnavailableError(err.Error())
	}
	return f, nil
}

func (s *LocalStore) OpenRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, apperrors.NotFound("asset")
	}
	if err != nil {
		return nil, apperrors.StorageUnavailableError(err.Error())
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, apperrors.StorageUnavailableError(err.Error())
	}
	return &limitedReadCloser{r: io.LimitReader(f, end-start), c: f}, nil
}

func (s *LocalStore) Stat(ctx context.Context, key string) (Info, error) {
	fi, err := os.Stat(s.path(key))
	if os.IsNotExist(err) {
		return Info{}, apperrors.NotFound("asset")
	}
	if err != nil {
		return Info{}, apperrors.StorageUnavailableError(err.Error())
	}
	return Info{Size: fi.Size(), Mtime: fi.ModTime()}, nil
}

func (s *LocalStore) ResolvePath(key string) string {
	return s.path(key)
}

type limitedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedReadCloser) Close() error                { return l.c.Close() }
