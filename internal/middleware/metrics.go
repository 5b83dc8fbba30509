package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/metrics"
)

// Metrics records request counts, latencies and in-flight requests.
// Routes are labelled by their pattern, never by the raw path.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.RequestStarted()

		c.Next()

		collector.RequestFinished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
