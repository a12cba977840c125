package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"colisflow/pkg/metrics"
)

// Metrics records request count and latency per route template.
// Unmatched paths share one label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
