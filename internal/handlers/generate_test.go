package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/musewave/backend/internal/kernel"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/store"
)

func newTestKernel(t *testing.T) (*kernel.MockKernel, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.Asset{}, &models.ApiKey{}))

	mock := kernel.NewMock().
		WithMockDB(db).
		WithMockJobStore(store.New(db))
	return mock, db
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/generate", h.Generate)
	r.GET("/v1/jobs/:id", h.GetJob)
	return r
}

func validGenerateBody() []byte {
	return []byte(`{"musicPrompt":"a rainy-night drive","genres":["synthwave"],"durationSec":60}`)
}

func TestGenerate_Accepted(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(validGenerateBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)
}

func TestGenerate_UnknownField(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	body := []byte(`{"musicPrompt":"x","genres":["lo-fi"],"durationSec":60,"bogusField":true}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ValidationFailure(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	body := []byte(`{"musicPrompt":"","genres":[],"durationSec":5}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_DedupeReusesSucceededJob(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(validGenerateBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var first struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	require.NoError(t, mock.Kernel.JobStore().Succeed(context.Background(), first.JobID, models.JSONMap{"assets": models.JSONMap{}}, time.Now()))

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewReader(validGenerateBody()))
	req2.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusAccepted, w2.Code)
	assert.Contains(t, w2.Body.String(), `"reused":true`)
	assert.Contains(t, w2.Body.String(), `"status":"succeeded"`)
}
