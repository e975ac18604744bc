package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
)

// GetJob handles GET /v1/jobs/:id, returning the Job row verbatim per
// spec.md §4.8's status polling contract.
func (h *Handlers) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.Kernel().JobStore().GetJob(c.Request.Context(), id)
	if err != nil {
		writeAPIError(c, err)
		return
	}

	if job.ApiKeyID != "" {
		if rawKey, ok := c.Get("apiKey"); ok {
			if apiKey, ok := rawKey.(*models.ApiKey); ok && apiKey.ID != job.ApiKeyID {
				writeAPIError(c, apperrors.NotFound("job"))
				return
			}
		}
	}

	c.JSON(http.StatusOK, job)
}
