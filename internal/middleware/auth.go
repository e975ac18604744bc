package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/musewave/backend/internal/auth"
)

// AuthMiddleware validates the Authorization: Bearer <api_key> header
// against the ApiKey store, generalized from the teacher's JWT
// AuthMiddleware (internal/handlers/auth.go) to API-key lookup. /health and
// /metrics are mounted outside this middleware's route group per
// spec.md §6.
func AuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		key, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch err {
			case auth.ErrKeyDisabled:
				c.JSON(403, gin.H{"code": "FORBIDDEN", "message": "api key is disabled"})
			default:
				c.JSON(401, gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid api key"})
			}
			c.Abort()
			return
		}

		c.Set("apiKey", key)
		c.Set("apiKeyId", key.ID)
		c.Next()
	}
}
