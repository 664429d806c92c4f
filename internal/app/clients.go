package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime/bus"
)

type Clients struct {
	Redis  *goredis.Client
	SSEBus bus.Bus
}

// wireClients connects the optional redis used to fan ticket events out
// across instances. Without REDIS_ADDR the API runs single-instance.
func wireClients(ctx context.Context, log *logger.Logger, cfg config.RedisConfig) (Clients, error) {
	log.Info("Wiring clients...")

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set; realtime events stay in-process")
		return Clients{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("redis ping: %w", err)
	}

	return Clients{
		Redis:  rdb,
		SSEBus: bus.NewRedisBusFromClient(log, rdb, cfg.Channel),
	}, nil
}

func (c Clients) Close() error {
	if c.SSEBus != nil {
		return c.SSEBus.Close()
	}
	return nil
}
