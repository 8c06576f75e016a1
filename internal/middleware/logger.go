package middleware

import (
	"time"

	"go-do-list/backend/internal/logging"

	"github.com/gin-gonic/gin"
)

func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", RequestIDFrom(ctx),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error(ctx, "request failed", args...)
		case status >= 400:
			log.Warn(ctx, "request rejected", args...)
		default:
			log.Info(ctx, "request handled", args...)
		}
	}
}
