package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/musewave/backend/internal/kernel"
)

func TestMetrics_ServesPrometheusFormat(t *testing.T) {
	h := NewHandlers(kernel.MinimalMock().Kernel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", h.Metrics())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
