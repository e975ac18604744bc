// Package handlers implements the Gin HTTP handlers for the API Surface
// (spec.md §4.8), following the teacher's internal/handlers/handlers.go
// dependency-injection-via-kernel shape.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/kernel"
	"github.com/musewave/backend/internal/logger"
)

// Handlers contains all HTTP handlers for the API.
type Handlers struct {
	kernel *kernel.Kernel
}

// NewHandlers creates a new handlers instance with dependency injection.
func NewHandlers(k *kernel.Kernel) *Handlers {
	return &Handlers{kernel: k}
}

// Kernel returns the underlying dependency injection container.
func (h *Handlers) Kernel() *kernel.Kernel {
	return h.kernel
}

// errorResponse is the wire shape of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// writeAPIError renders err as a structured JSON error response, logging
// 5xx-class failures at Error and 4xx-class ones at Warn.
func writeAPIError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apperrors.InternalError(err.Error())
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
			zap.Int("status", apiErr.Status),
		)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
		)
	}

	c.JSON(apiErr.Status, errorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}
