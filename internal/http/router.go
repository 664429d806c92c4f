package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/tickethub-backend/internal/config"
	httpH "github.com/yungbote/tickethub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tickethub-backend/internal/http/middleware"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	CORS    config.CORSConfig
	Metrics *observability.Metrics
	// ServiceName names the server spans; empty disables otelgin.
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	TicketHandler    *httpH.TicketHandler
	UserHandler      *httpH.UserHandler
	DashboardHandler *httpH.DashboardHandler
	AnalyticsHandler *httpH.AnalyticsHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORS))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", httpH.MetricsHandler(cfg.Metrics))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	admin := api.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	}

	// Tickets
	if cfg.TicketHandler != nil {
		api.GET("/tickets", cfg.TicketHandler.List)
		api.POST("/tickets", cfg.TicketHandler.Create)
		api.GET("/tickets/:id", cfg.TicketHandler.Get)
		api.PATCH("/tickets/:id", cfg.TicketHandler.Update)
		api.DELETE("/tickets/:id", cfg.TicketHandler.Delete)
	}

	// Users
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
		api.GET("/agents", cfg.UserHandler.ListAgents)
		api.GET("/users/:id/avatar.png", cfg.UserHandler.Avatar)
		admin.GET("/users", cfg.UserHandler.List)
		admin.POST("/users", cfg.UserHandler.Create)
		admin.PATCH("/users/:id", cfg.UserHandler.Update)
		admin.DELETE("/users/:id", cfg.UserHandler.Delete)
	}

	// Dashboard
	if cfg.DashboardHandler != nil {
		api.GET("/dashboard/stats", cfg.DashboardHandler.Stats)
		api.GET("/dashboard/overview", cfg.DashboardHandler.Overview)
	}

	// Analytics
	if cfg.AnalyticsHandler != nil {
		api.GET("/analytics/overview", cfg.AnalyticsHandler.Overview)
		api.GET("/analytics/agents", cfg.AnalyticsHandler.Agents)
		api.GET("/analytics/tickets", cfg.AnalyticsHandler.Tickets)
	}

	return r
}
