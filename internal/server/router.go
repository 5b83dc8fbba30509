package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/handler"
	"github.com/satvikmishra44/taskhub/internal/middleware"
	"github.com/satvikmishra44/taskhub/metrics"
	"github.com/satvikmishra44/taskhub/net/resp"
)

func newRouter(conf *config.Config, h *handler.Handler, collector *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.HandleMethodNotAllowed = true

	var origins []string
	if conf.Server != nil && conf.Server.CORS != nil {
		origins = conf.Server.CORS.AllowOrigins
	}
	r.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger("/health", "/metrics"),
		middleware.Metrics(collector),
		middleware.CORS(origins),
	)

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("Route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		resp.Fail(c.Writer, &resp.Exception{
			Status:  http.StatusMethodNotAllowed,
			Code:    ecode.RequestErr,
			Message: "Method not allowed",
		})
	})

	r.GET("/metrics", gin.WrapH(collector.Handler()))
	h.Routes(r)
	return r
}
