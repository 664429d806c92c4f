package services

import (
	"context"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime"
	"github.com/yungbote/tickethub-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "channel", msg.Channel, "event", msg.Event, "error", err)
	}
}
