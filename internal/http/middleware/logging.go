package middleware

import (
	"time"

	"clipit_tycoon/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request; server errors at error level
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		if id, ok := PlayerID(c); ok {
			args = append(args, "player_id", id)
		}

		switch {
		case status >= 500:
			logger.Error("request", args...)
		case status >= 400:
			logger.Info("request", args...)
		default:
			logger.Debug("request", args...)
		}
	}
}
