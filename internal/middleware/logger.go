package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/logging/logger"
)

// Logger writes one entry per request. Server errors log at error level,
// client errors at warn level.
func Logger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if _, ok := skipped[path]; ok {
			return
		}

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start).String(),
			"ip", c.ClientIP(),
			"size", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.Error(ctx, append([]any{"HTTP request"}, fields...)...)
		case status >= 400:
			logger.Warn(ctx, append([]any{"HTTP request"}, fields...)...)
		default:
			logger.Info(ctx, append([]any{"HTTP request"}, fields...)...)
		}
	}
}
