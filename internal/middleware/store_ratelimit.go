package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/store"
)

// StoreRateLimitMiddleware enforces spec.md §4.6's per-API-key rate limit
// via the Job Store's atomic `tryAdmit` upsert+increment, distinct from
// RedisRateLimitMiddleware's coarse per-IP defense-in-depth limiter. It
// must run after AuthMiddleware, which sets "apiKey" in the gin context.
func StoreRateLimitMiddleware(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey, exists := c.Get("apiKey")
		if !exists {
			c.Next()
			return
		}
		apiKey := rawKey.(*models.ApiKey)

		err := st.TryAdmit(c.Request.Context(), apiKey.ID, apiKey.RateLimitPerMin, time.Now())
		if err != nil {
			var apiErr *apperrors.APIError
			if errors.As(err, &apiErr) && apiErr.Code == apperrors.ErrRateLimited {
				c.JSON(429, gin.H{"code": "RATE_LIMITED", "message": "rate limit exceeded"})
				c.Abort()
				return
			}
			c.JSON(500, gin.H{"code": "INTERNAL_ERROR", "message": "rate limiter unavailable"})
			c.Abort()
			return
		}

		c.Next()
	}
}
