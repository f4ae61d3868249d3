package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edutrack-app/edutrack-bff/internal/models"
	"github.com/edutrack-app/edutrack-bff/internal/repository"
)

// Audit records an audit log entry after successful mutation requests.
func Audit(repo *repository.AuditRepository, action, entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if repo == nil {
			c.Next()
			return
		}

		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actor *string
		if claims := Claims(c); claims != nil && claims.Subject != "" {
			subject := claims.Subject
			actor = &subject
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.Create(c.Request.Context(), &models.AuditLog{
			Actor:     actor,
			Action:    action,
			Entity:    entity,
			Detail:    detail,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
	}
}
