package middleware

import (
	"strconv"
	"time"

	"ordersvc/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records count and latency per route template, so
// /orders/:id is one series regardless of the id.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}
