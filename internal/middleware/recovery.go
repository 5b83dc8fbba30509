package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/logging/observes"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// Recovery turns a panic into a 500 response, reporting it to sentry
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			ctx := c.Request.Context()
			logger.Error(ctx, "panic recovered", "panic", recovered, "path", c.Request.URL.Path, "stack", string(debug.Stack()))
			observes.CapturePanic(ctx, recovered)

			if !c.Writer.Written() {
				resp.Fail(c.Writer, resp.InternalServer(""))
			}
			c.Abort()
		}()
		c.Next()
	}
}
