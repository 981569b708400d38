package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"collab-board/internal/metrics"
)

// Metrics returns a middleware that records HTTP metrics
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath() // route pattern, not actual path
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
