package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type AnalyticsHandler struct {
	log       *logger.Logger
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(log *logger.Logger, analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{log: log.With("handler", "AnalyticsHandler"), analytics: analytics}
}

// GET /api/analytics/overview?rangeDays=
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	out, err := h.analytics.Overview(c.Request.Context(), c.Query("rangeDays"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/analytics/agents?rangeDays=
func (h *AnalyticsHandler) Agents(c *gin.Context) {
	out, err := h.analytics.Agents(c.Request.Context(), c.Query("rangeDays"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/analytics/tickets?rangeDays=
func (h *AnalyticsHandler) Tickets(c *gin.Context) {
	out, err := h.analytics.Tickets(c.Request.Context(), c.Query("rangeDays"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
