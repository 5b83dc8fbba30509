package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// ServeFile streams a stored attachment. The route is public so links in
// task views open directly.
func (h *Handler) ServeFile(c *gin.Context) {
	r, name, err := h.svc.Task.Download(c.Request.Context(), c.Param("path"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer r.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", r, map[string]string{
		"Content-Disposition":    mime.FormatMediaType("inline", map[string]string{"filename": name}),
		"X-Content-Type-Options": "nosniff",
	})
}

// Health reports whether the store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.data.Ping(ctx); err != nil {
		logger.Warn(ctx, "health check failed", "error", err)
		resp.Fail(c.Writer, &resp.Exception{
			Status:  http.StatusServiceUnavailable,
			Code:    ecode.ServerErr,
			Message: "unhealthy",
		})
		return
	}
	resp.Success(c.Writer, map[string]string{"status": "healthy"})
}
