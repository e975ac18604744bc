package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/repository"
	"github.com/musewave/backend/internal/storage"
)

type kernelAssetFixture struct {
	store     storage.Store
	assetRepo repository.AssetRepository
}

func newAssetTestRouter(t *testing.T) (*gin.Engine, *kernelAssetFixture) {
	t.Helper()
	mock, db := newTestKernel(t)

	assetsDir := t.TempDir()
	store, err := storage.NewLocalStore(assetsDir, "http://localhost:8080/assets")
	require.NoError(t, err)

	assetRepo := repository.NewAssetRepository(db)
	mock = mock.WithMockStorage(store).WithMockAssetRepo(assetRepo)

	h := NewHandlers(mock.Kernel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/assets/:id", h.GetAsset)

	return r, &kernelAssetFixture{store: store, assetRepo: assetRepo}
}

func TestGetAsset_NotFound(t *testing.T) {
	r, _ := newAssetTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAsset_FullBody(t *testing.T) {
	r, fx := newAssetTestRouter(t)

	key := "jobs/1/mix.wav"
	content := []byte("RIFF0000WAVEfmt ")
	_, _, err := fx.store.Put(context.Background(), key, content)
	require.NoError(t, err)

	asset := &models.Asset{
		ID:        "asset-1",
		JobID:     "job-1",
		Kind:      models.AssetKindWAV,
		Mime:      "audio/wav",
		Path:      key,
		URL:       "http://localhost:8080/assets/" + key,
		SizeBytes: int64(len(content)),
		CreatedAt: time.Now(),
	}
	require.NoError(t, fx.assetRepo.Create(context.Background(), asset))

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/asset-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}

func TestGetAsset_RangeRequest(t *testing.T) {
	r, fx := newAssetTestRouter(t)

	key := "jobs/2/mix.wav"
	content := []byte("0123456789")
	_, _, err := fx.store.Put(context.Background(), key, content)
	require.NoError(t, err)

	asset := &models.Asset{
		ID:        "asset-2",
		JobID:     "job-2",
		Kind:      models.AssetKindWAV,
		Mime:      "audio/wav",
		Path:      key,
		URL:       "http://localhost:8080/assets/" + key,
		SizeBytes: int64(len(content)),
		CreatedAt: time.Now(),
	}
	require.NoError(t, fx.assetRepo.Create(context.Background(), asset))

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/asset-2", nil)
	req.Header.Set("Range", "bytes=2-5")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "2345", w.Body.String())
	assert.Equal(t, "bytes 2-5/10", w.Header().Get("Content-Range"))
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("bytes=0-3", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(3), end)

	start, end, err = parseRange("bytes=-4", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(6), start)
	assert.Equal(t, int64(9), end)

	start, end, err = parseRange("bytes=5-", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), start)
	assert.Equal(t, int64(9), end)

	_, _, err = parseRange("bytes=0-3,5-7", 10)
	assert.Error(t, err)

	_, _, err = parseRange("bytes=20-30", 10)
	assert.Error(t, err)
}
