package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/metrics"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/planner"
	"github.com/musewave/backend/internal/store"
)

// Generate handles POST /v1/generate: validates the request, calls the
// Planner to fail fast on a malformed prompt, then enqueues a single
// `pipeline` Job, per spec.md §4.8.
func (h *Handlers) Generate(c *gin.Context) {
	var req models.GenerateRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeAPIError(c, apperrors.InvalidRequestError("body", "malformed or unrecognized JSON field"))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		writeAPIError(c, apperrors.InvalidRequestError("body", err.Error()))
		return
	}

	if _, err := planner.Plan(&req); err != nil {
		writeAPIError(c, err)
		return
	}

	params, err := toParams(&req)
	if err != nil {
		writeAPIError(c, apperrors.InternalError("encoding request params: "+err.Error()))
		return
	}

	rawKey, _ := c.Get("apiKey")
	apiKey, _ := rawKey.(*models.ApiKey)
	apiKeyID := ""
	if apiKey != nil {
		apiKeyID = apiKey.ID
	}

	jobID, reused, err := h.Kernel().JobStore().Enqueue(c.Request.Context(), models.JobTypePipeline, params, store.EnqueueOptions{
		ApiKeyID: apiKeyID,
	})
	if err != nil {
		writeAPIError(c, err)
		return
	}

	if !reused {
		metrics.Get().ObserveJobCreated(models.JobTypePipeline)
	}
	if pool := h.Kernel().WorkerPool(); pool != nil {
		pool.Wake(models.JobTypePipeline)
	}

	status := "queued"
	body := gin.H{"jobId": jobID, "status": status, "reused": reused}

	if reused {
		if job, err := h.Kernel().JobStore().GetJob(c.Request.Context(), jobID); err == nil && job.Status == models.JobStatusSucceeded {
			body["status"] = "succeeded"
			body["result"] = job.Result
		}
	}

	c.JSON(http.StatusAccepted, body)
}

func toParams(req *models.GenerateRequest) (models.JSONMap, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var params models.JSONMap
	if err := json.Unmarshal(encoded, &params); err != nil {
		return nil, err
	}
	return params, nil
}
