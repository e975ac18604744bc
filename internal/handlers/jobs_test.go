package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/store"
)

func TestGetJob_NotFound(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJob_Found(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)
	r := newTestRouter(h)

	jobID, _, err := mock.Kernel.JobStore().Enqueue(context.Background(), models.JobTypePipeline, models.JSONMap{"musicPrompt": "x"}, store.EnqueueOptions{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+jobID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)
}

func TestGetJob_ScopedToOwningApiKey(t *testing.T) {
	mock, _ := newTestKernel(t)
	h := NewHandlers(mock.Kernel)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/jobs/:id", func(c *gin.Context) {
		c.Set("apiKey", &models.ApiKey{ID: "some-other-key"})
		h.GetJob(c)
	})

	jobID, _, err := mock.Kernel.JobStore().Enqueue(context.Background(), models.JobTypePipeline, models.JSONMap{"musicPrompt": "x"}, store.EnqueueOptions{
		ApiKeyID: "owning-key",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+jobID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
