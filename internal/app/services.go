package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/realtime"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Ticket    services.TicketService
	User      services.UserService
	Avatar    services.AvatarService
	Dashboard services.DashboardService
	Analytics services.AnalyticsService
	Emitter   services.SSEEmitter
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg *config.Config,
	reposet Repos,
	clients Clients,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	notify := services.NewTicketNotifier(emitter)
	cal := analytics.NewCalendar(cfg.Analytics.Location())

	avatars, err := services.NewAvatarService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	return Services{
		Auth:      services.NewAuthService(db, log, reposet.User, cfg.Auth.JWTSecretKey, cfg.Auth.Issuer),
		Ticket:    services.NewTicketService(db, log, reposet.Ticket, reposet.Activity, reposet.User, notify, cal, metrics),
		User:      services.NewUserService(db, log, reposet.User, reposet.Ticket, reposet.Activity, avatars, notify),
		Avatar:    avatars,
		Dashboard: services.NewDashboardService(db, log, reposet.Ticket, reposet.Activity, reposet.User, cal),
		Analytics: services.NewAnalyticsService(db, log, reposet.Ticket, reposet.User, cal),
		Emitter:   emitter,
	}, nil
}
