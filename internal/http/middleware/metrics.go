package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/observability"
)

// Metrics instruments HTTP request counts/latency when metrics are enabled.
// Routes are labelled by their pattern so ids do not explode cardinality.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflight(1)
		defer m.APIInflight(-1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
