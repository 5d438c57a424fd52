package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-backend/internal/metrics"
)

// MetricsMiddleware пишет длительность запроса с меткой шаблона маршрута, а
// не фактического пути.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
