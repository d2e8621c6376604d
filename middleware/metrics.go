package middleware

import (
	"strconv"
	"time"

	"near-expiry-api/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template so
// /api/orders/:id is one series, not one per order.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
