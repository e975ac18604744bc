package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musewave/backend/internal/storage"
	"github.com/musewave/backend/internal/transcoder"
)

func TestHealth_AllDependenciesUp(t *testing.T) {
	mock, _ := newTestKernel(t)

	blobStore, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)
	mock = mock.WithMockStorage(blobStore).WithMockTranscoder(transcoder.NewGateway("true", "true"))

	h := NewHandlers(mock.Kernel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, w.Code)
	assert.Contains(t, w.Body.String(), `"database":true`)
	assert.Contains(t, w.Body.String(), `"storage":true`)
}

func TestHealth_TranscoderMissingIsDegraded(t *testing.T) {
	mock, _ := newTestKernel(t)

	blobStore, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)
	mock = mock.WithMockStorage(blobStore).WithMockTranscoder(transcoder.NewGateway("musewave-not-a-real-binary", "musewave-not-a-real-binary"))

	h := NewHandlers(mock.Kernel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
