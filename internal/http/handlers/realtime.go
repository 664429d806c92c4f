package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log     *logger.Logger
	Hub     *realtime.SSEHub
	Metrics *observability.Metrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Hub:     hub,
		Metrics: metrics,
	}
}

// GET /api/sse/stream
// Admins listen on the admin channel, which already carries every ticket
// event; staff listen on their own user channel.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, 401, apierr.CodeUnauthorized, apierr.Unauthorized("not authenticated"))
		return
	}
	client := h.Hub.NewSSEClient(rd.UserID)
	channel := rd.UserID.String()
	if rd.IsAdmin() {
		channel = realtime.AdminChannel
	}
	h.Hub.AddChannel(client, channel)
	h.Log.Debug("SSE stream open", "user_id", rd.UserID.String(), "channel", channel)

	start := time.Now()
	h.Metrics.SSEClients(1)
	defer func() {
		h.Hub.CloseClient(client)
		h.Metrics.SSEClients(-1)
		h.Log.Info("SSE stream closed",
			"user_id", rd.UserID.String(),
			"channel", channel,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	h.Hub.ServeHTTP(c.Writer, c.Request, client)
}
