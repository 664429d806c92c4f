package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

const (
	dashboardRecentTickets    = 5
	dashboardRecentActivities = 8
	dashboardVolumeDays       = 30
	dashboardTrendWeeks       = 12
	dashboardTrendDays        = dashboardTrendWeeks * 7
)

type DashboardStats struct {
	TotalTickets      int64                          `json:"totalTickets"`
	OpenTickets       int64                          `json:"openTickets"`
	InProgressTickets int64                          `json:"inProgressTickets"`
	ResolvedTickets   int64                          `json:"resolvedTickets"`
	AvgResolutionTime int                            `json:"avgResolutionTime"`
	TicketsByPriority map[types.TicketPriority]int64 `json:"ticketsByPriority"`
	RecentTickets     []*types.Ticket                `json:"recentTickets"`
}

type DashboardKPIs struct {
	TotalTickets       int64 `json:"totalTickets"`
	OpenTickets        int64 `json:"openTickets"`
	InProgressTickets  int64 `json:"inProgressTickets"`
	ResolvedTickets    int64 `json:"resolvedTickets"`
	AvgResolutionHours int   `json:"avgResolutionHours"`
}

type DashboardOverview struct {
	KPIs              DashboardKPIs             `json:"kpis"`
	TicketVolume      []analytics.DayCount      `json:"ticketVolume"`
	ResolutionTrends  []analytics.PeriodAverage `json:"resolutionTrends"`
	TicketsByStatus   []analytics.StatusCount   `json:"ticketsByStatus"`
	TicketsByPriority []analytics.PriorityCount `json:"ticketsByPriority"`
	AgentPerformance  []analytics.AgentStats    `json:"agentPerformance"`
	RecentActivities  []*types.Activity         `json:"recentActivities"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Overview(ctx context.Context) (*DashboardOverview, error)
}

type dashboardService struct {
	db           *gorm.DB
	log          *logger.Logger
	ticketRepo   repos.TicketRepo
	activityRepo repos.ActivityRepo
	userRepo     repos.UserRepo
	cal          analytics.Calendar
	now          func() time.Time
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	ticketRepo repos.TicketRepo,
	activityRepo repos.ActivityRepo,
	userRepo repos.UserRepo,
	cal analytics.Calendar,
) DashboardService {
	return &dashboardService{
		db:           db,
		log:          log.With("service", "DashboardService"),
		ticketRepo:   ticketRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		cal:          cal,
		now:          time.Now,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	scope := ticketScope(rd)

	var (
		totals     statusTotals
		priorities map[types.TicketPriority]int64
		recent     []*types.Ticket
		resolved   []types.TicketReportRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = loadStatusTotals(gctx, s.ticketRepo, scope)
		return err
	})
	g.Go(func() (err error) {
		priorities, err = loadPriorityCounts(gctx, s.ticketRepo, scope)
		return err
	})
	g.Go(func() error {
		return traced(gctx, "report.recent_tickets", func(ctx context.Context) (err error) {
			recent, err = s.ticketRepo.ListRecent(dbctx.Context{Ctx: ctx}, scope, dashboardRecentTickets)
			if err != nil {
				return fmt.Errorf("load recent tickets: %w", err)
			}
			return nil
		})
	})
	g.Go(func() (err error) {
		resolved, err = loadReportRows(gctx, s.ticketRepo, "resolved_tickets", repos.TicketReportFilter{
			Scope:    scope,
			Statuses: []types.TicketStatus{types.TicketStatusResolved},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPriority := make(map[types.TicketPriority]int64, len(types.TicketPriorities))
	for _, p := range types.TicketPriorities {
		byPriority[p] = priorities[p]
	}
	return &DashboardStats{
		TotalTickets:      totals.total,
		OpenTickets:       totals.byStatus[types.TicketStatusOpen],
		InProgressTickets: totals.byStatus[types.TicketStatusInProgress],
		ResolvedTickets:   totals.byStatus[types.TicketStatusResolved],
		AvgResolutionTime: analytics.AverageResolutionHours(resolved),
		TicketsByPriority: byPriority,
		RecentTickets:     recent,
	}, nil
}

func (s *dashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	scope := ticketScope(rd)
	now := s.now()
	volumeStart := s.cal.WindowStart(now, dashboardVolumeDays)
	trendStart := s.cal.WindowStart(now, dashboardTrendDays)
	agentLimit := 3
	if rd.IsAdmin() {
		agentLimit = 6
	}

	var (
		totals     statusTotals
		priorities map[types.TicketPriority]int64
		created    []types.TicketReportRow
		resolved   []types.TicketReportRow
		assigned   []types.TicketReportRow
		activities []*types.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = loadStatusTotals(gctx, s.ticketRepo, scope)
		return err
	})
	g.Go(func() (err error) {
		priorities, err = loadPriorityCounts(gctx, s.ticketRepo, scope)
		return err
	})
	g.Go(func() (err error) {
		created, err = loadReportRows(gctx, s.ticketRepo, "created_tickets", repos.TicketReportFilter{
			Scope:       scope,
			CreatedFrom: &volumeStart,
		})
		return err
	})
	g.Go(func() (err error) {
		resolved, err = loadReportRows(gctx, s.ticketRepo, "resolved_tickets", repos.TicketReportFilter{
			Scope:        scope,
			ResolvedFrom: &trendStart,
		})
		return err
	})
	g.Go(func() (err error) {
		assigned, err = loadReportRows(gctx, s.ticketRepo, "assigned_tickets", repos.TicketReportFilter{
			Scope:        scope,
			AssignedOnly: true,
			CreatedFrom:  &trendStart,
		})
		return err
	})
	g.Go(func() error {
		return traced(gctx, "report.recent_activities", func(ctx context.Context) (err error) {
			activities, err = s.activityRepo.ListRecent(dbctx.Context{Ctx: ctx}, scope, dashboardRecentActivities)
			if err != nil {
				return fmt.Errorf("load recent activities: %w", err)
			}
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names, err := agentNames(ctx, s.userRepo, assigned)
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		KPIs: DashboardKPIs{
			TotalTickets:       totals.total,
			OpenTickets:        totals.byStatus[types.TicketStatusOpen],
			InProgressTickets:  totals.byStatus[types.TicketStatusInProgress],
			ResolvedTickets:    totals.byStatus[types.TicketStatusResolved],
			AvgResolutionHours: analytics.AverageResolutionHours(resolved),
		},
		TicketVolume:      s.cal.DailyCounts(created, volumeStart, dashboardVolumeDays),
		ResolutionTrends:  s.cal.ResolutionTrends(resolved, trendStart, dashboardTrendWeeks),
		TicketsByStatus:   analytics.StatusDistribution(totals.byStatus),
		TicketsByPriority: analytics.PriorityDistribution(priorities),
		AgentPerformance:  analytics.AgentPerformance(assigned, names, agentLimit),
		RecentActivities:  activities,
	}, nil
}
