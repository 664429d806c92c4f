package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/observability"
)

// GET /metrics
func MetricsHandler(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.WriteHTTP(c.Writer, c.Request)
	}
}
