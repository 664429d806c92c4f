package bus

import (
	"context"
	"testing"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

func TestNilBusReportsUninitialized(t *testing.T) {
	var b *redisBus
	if err := b.Publish(context.Background(), realtime.SSEMessage{Channel: "admin"}); err == nil {
		t.Fatal("Publish on nil bus: expected error")
	}
	if err := b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}); err == nil {
		t.Fatal("StartForwarder on nil bus: expected error")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close on nil bus: %v", err)
	}
}

func TestDefaultChannel(t *testing.T) {
	b := NewRedisBusFromClient(logger.Nop(), nil, "  ").(*redisBus)
	if b.channel != "tickethub:sse" {
		t.Fatalf("channel: got=%q", b.channel)
	}
	if err := b.StartForwarder(context.Background(), nil); err == nil {
		t.Fatal("StartForwarder without client: expected error")
	}
}
