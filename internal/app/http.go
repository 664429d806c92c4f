package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/http"
	httpH "github.com/yungbote/tickethub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tickethub-backend/internal/http/middleware"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Ticket    *httpH.TicketHandler
	User      *httpH.UserHandler
	Dashboard *httpH.DashboardHandler
	Analytics *httpH.AnalyticsHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, hub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Ticket:    httpH.NewTicketHandler(log, services.Ticket),
		User:      httpH.NewUserHandler(log, services.User),
		Dashboard: httpH.NewDashboardHandler(log, services.Dashboard),
		Analytics: httpH.NewAnalyticsHandler(log, services.Analytics),
		Realtime:  httpH.NewRealtimeHandler(log, hub, metrics),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg *config.Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
		if serviceName == "" {
			serviceName = "tickethub"
		}
	}
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		CORS:             cfg.CORS,
		Metrics:          metrics,
		ServiceName:      serviceName,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		TicketHandler:    handlers.Ticket,
		UserHandler:      handlers.User,
		DashboardHandler: handlers.Dashboard,
		AnalyticsHandler: handlers.Analytics,
		RealtimeHandler:  handlers.Realtime,
	})
}
