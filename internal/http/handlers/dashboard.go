package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), dashboard: dashboard}
}

// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	ov, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, ov)
}
