package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/data/db"
	"github.com/yungbote/tickethub-backend/internal/http"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      *config.Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	dbService    *db.DatabaseService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// initOTel is swapped in tests.
var initOTel = observability.InitOTel

// NewWithConfig wires the app from an already loaded config. On failure
// everything opened so far is released, the tracer provider included.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg *config.Config) (*App, error) {
	otelShutdown := initOTel(ctx, log, cfg.Otel)

	var (
		dbService *db.DatabaseService
		clients   Clients
	)
	fail := func(err error) (*App, error) {
		if cerr := clients.Close(); cerr != nil {
			log.Warn("Closing redis failed", "error", cerr)
		}
		if dbService != nil {
			_ = dbService.Close()
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if serr := otelShutdown(flushCtx); serr != nil {
			log.Warn("Flushing traces failed", "error", serr)
		}
		return nil, err
	}

	dbService, err := db.NewDatabaseService(cfg.DB, log)
	if err != nil {
		return fail(fmt.Errorf("init database: %w", err))
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		return fail(fmt.Errorf("automigrate: %w", err))
	}
	if err := db.EnsureTicketIndexes(theDB); err != nil {
		return fail(fmt.Errorf("ticket indexes: %w", err))
	}

	clients, err = wireClients(ctx, log, cfg.Redis)
	if err != nil {
		return fail(err)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, hub, metrics)
	if err != nil {
		return fail(err)
	}

	handlerset := wireHandlers(log, theDB, serviceset, hub, metrics)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       hub,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: the redis forwarder feeding the local
// hub and the metrics collectors.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}
	interval := a.Cfg.Metrics.ScrapeInterval
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, interval)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, interval)
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := http.NewServer(a.Log, a.Cfg.HTTP, a.Router)
	srv.OnShutdown(a.SSEHub.CloseAll)
	return srv.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("Closing redis failed", "error", err)
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Flushing traces failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
