package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/observability"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type AnalyticsTotals struct {
	TotalTickets      int64 `json:"totalTickets"`
	OpenTickets       int64 `json:"openTickets"`
	InProgressTickets int64 `json:"inProgressTickets"`
	ResolvedTickets   int64 `json:"resolvedTickets"`
	ClosedTickets     int64 `json:"closedTickets"`
}

type AnalyticsSummaries struct {
	Week  analytics.PeriodSummary `json:"week"`
	Month analytics.PeriodSummary `json:"month"`
}

type AnalyticsOverview struct {
	RangeDays         int                       `json:"rangeDays"`
	Totals            AnalyticsTotals           `json:"totals"`
	TicketsByStatus   []analytics.StatusCount   `json:"ticketsByStatus"`
	TicketsByPriority []analytics.PriorityCount `json:"ticketsByPriority"`
	TicketVolume      []analytics.DayCount      `json:"ticketVolume"`
	ResolutionTrends  []analytics.PeriodAverage `json:"resolutionTrends"`
	AgentPerformance  []analytics.AgentStats    `json:"agentPerformance"`
	Summaries         AnalyticsSummaries        `json:"summaries"`
}

// HandledAgentStats is AgentStats as the agents report names it: every
// assigned ticket counts as handled.
type HandledAgentStats struct {
	AgentID            string `json:"agentId"`
	AgentName          string `json:"agentName"`
	Handled            int    `json:"handled"`
	Resolved           int    `json:"resolved"`
	Open               int    `json:"open"`
	AvgResolutionHours int    `json:"avgResolutionHours"`
}

type TopAgent struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
}

type AgentAnalytics struct {
	RangeDays          int                           `json:"rangeDays"`
	Agents             []HandledAgentStats           `json:"agents"`
	TopAgents          []TopAgent                    `json:"topAgents"`
	ProductivityTrends []analytics.ProductivityPoint `json:"productivityTrends"`
}

type CategoryCount struct {
	Category types.TicketPriority `json:"category"`
	Count    int64                `json:"count"`
}

type TicketAnalytics struct {
	RangeDays            int                       `json:"rangeDays"`
	Daily                []analytics.DayCount      `json:"daily"`
	Weekly               []analytics.PeriodCount   `json:"weekly"`
	Monthly              []analytics.PeriodCount   `json:"monthly"`
	PeakPeriods          []analytics.DayCount      `json:"peakPeriods"`
	CategoryDistribution []CategoryCount           `json:"categoryDistribution"`
	ResolutionTrends     []analytics.PeriodAverage `json:"resolutionTrends"`
}

// AnalyticsService serves the reporting pages. rangeDays is the raw query
// value; see analytics.ClampRangeDays.
type AnalyticsService interface {
	Overview(ctx context.Context, rangeDays string) (*AnalyticsOverview, error)
	Agents(ctx context.Context, rangeDays string) (*AgentAnalytics, error)
	Tickets(ctx context.Context, rangeDays string) (*TicketAnalytics, error)
}

type analyticsService struct {
	db         *gorm.DB
	log        *logger.Logger
	ticketRepo repos.TicketRepo
	userRepo   repos.UserRepo
	cal        analytics.Calendar
	now        func() time.Time
}

func NewAnalyticsService(
	db *gorm.DB,
	log *logger.Logger,
	ticketRepo repos.TicketRepo,
	userRepo repos.UserRepo,
	cal analytics.Calendar,
) AnalyticsService {
	return &analyticsService{
		db:         db,
		log:        log.With("service", "AnalyticsService"),
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		cal:        cal,
		now:        time.Now,
	}
}

func (s *analyticsService) begin(ctx context.Context, name, raw string) (context.Context, trace.Span, *ctxutil.RequestData, int, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return ctx, nil, nil, 0, err
	}
	days := analytics.ClampRangeDays(raw)
	ctx, span := observability.Tracer().Start(ctx, name)
	span.SetAttributes(rangeAttr(days))
	return ctx, span, rd, days, nil
}

func (s *analyticsService) Overview(ctx context.Context, rawRange string) (*AnalyticsOverview, error) {
	ctx, span, rd, rangeDays, err := s.begin(ctx, "analytics.overview", rawRange)
	if err != nil {
		return nil, err
	}
	defer span.End()

	scope := ticketScope(rd)
	now := s.now()
	start := s.cal.WindowStart(now, rangeDays)
	weekStart := s.cal.StartOfWeek(now)
	monthStart := s.cal.StartOfMonth(now)
	agentLimit := 3
	if rd.IsAdmin() {
		agentLimit = 8
	}

	var (
		totals                      statusTotals
		priorities                  map[types.TicketPriority]int64
		created, resolved, assigned []types.TicketReportRow
		weekCreated, weekResolved   []types.TicketReportRow
		monthCreated, monthResolved []types.TicketReportRow
	)
	rows := func(g *errgroup.Group, gctx context.Context, dst *[]types.TicketReportRow, name string, f repos.TicketReportFilter) {
		f.Scope = scope
		g.Go(func() (err error) {
			*dst, err = loadReportRows(gctx, s.ticketRepo, name, f)
			return err
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = loadStatusTotals(gctx, s.ticketRepo, scope)
		return err
	})
	g.Go(func() (err error) {
		priorities, err = loadPriorityCounts(gctx, s.ticketRepo, scope)
		return err
	})
	rows(g, gctx, &created, "created_tickets", repos.TicketReportFilter{CreatedFrom: &start})
	rows(g, gctx, &resolved, "resolved_tickets", repos.TicketReportFilter{ResolvedFrom: &start})
	rows(g, gctx, &assigned, "assigned_tickets", repos.TicketReportFilter{AssignedOnly: true, CreatedFrom: &start})
	rows(g, gctx, &weekCreated, "week_created", repos.TicketReportFilter{CreatedFrom: &weekStart})
	rows(g, gctx, &weekResolved, "week_resolved", repos.TicketReportFilter{ResolvedFrom: &weekStart})
	rows(g, gctx, &monthCreated, "month_created", repos.TicketReportFilter{CreatedFrom: &monthStart})
	rows(g, gctx, &monthResolved, "month_resolved", repos.TicketReportFilter{ResolvedFrom: &monthStart})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names, err := agentNames(ctx, s.userRepo, assigned)
	if err != nil {
		return nil, err
	}

	return &AnalyticsOverview{
		RangeDays: rangeDays,
		Totals: AnalyticsTotals{
			TotalTickets:      totals.total,
			OpenTickets:       totals.byStatus[types.TicketStatusOpen],
			InProgressTickets: totals.byStatus[types.TicketStatusInProgress],
			ResolvedTickets:   totals.byStatus[types.TicketStatusResolved],
			ClosedTickets:     totals.byStatus[types.TicketStatusClosed],
		},
		TicketsByStatus:   analytics.StatusDistribution(totals.byStatus),
		TicketsByPriority: analytics.PriorityDistribution(priorities),
		TicketVolume:      s.cal.DailyCounts(created, start, rangeDays),
		ResolutionTrends:  s.cal.ResolutionTrends(resolved, start, analytics.WeekCount(rangeDays)),
		AgentPerformance:  analytics.AgentPerformance(assigned, names, agentLimit),
		Summaries: AnalyticsSummaries{
			Week:  analytics.Summarize(weekCreated, weekResolved),
			Month: analytics.Summarize(monthCreated, monthResolved),
		},
	}, nil
}

func (s *analyticsService) Agents(ctx context.Context, rawRange string) (*AgentAnalytics, error) {
	ctx, span, rd, rangeDays, err := s.begin(ctx, "analytics.agents", rawRange)
	if err != nil {
		return nil, err
	}
	defer span.End()

	// staff only ever see their own numbers here
	scope := repos.TicketScope{}
	topLimit := 4
	if !rd.IsAdmin() {
		scope = repos.TicketScope{UserID: rd.UserID, AssignedOnly: true}
		topLimit = 1
	}
	start := s.cal.WindowStart(s.now(), rangeDays)

	var all, resolved []types.TicketReportRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = loadReportRows(gctx, s.ticketRepo, "assigned_tickets", repos.TicketReportFilter{
			Scope:        scope,
			AssignedOnly: true,
		})
		return err
	})
	g.Go(func() (err error) {
		resolved, err = loadReportRows(gctx, s.ticketRepo, "resolved_assigned", repos.TicketReportFilter{
			Scope:        scope,
			AssignedOnly: true,
			ResolvedFrom: &start,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names, err := agentNames(ctx, s.userRepo, all)
	if err != nil {
		return nil, err
	}
	perf := analytics.AgentPerformance(all, names, 0)

	agents := make([]HandledAgentStats, 0, len(perf))
	for _, a := range perf {
		agents = append(agents, HandledAgentStats{
			AgentID:            a.AgentID.String(),
			AgentName:          a.AgentName,
			Handled:            a.Assigned,
			Resolved:           a.Resolved,
			Open:               a.Open,
			AvgResolutionHours: a.AvgResolutionHours,
		})
	}
	top := perf
	if len(top) > topLimit {
		top = top[:topLimit]
	}
	topAgents := make([]TopAgent, 0, len(top))
	for _, a := range top {
		topAgents = append(topAgents, TopAgent{AgentID: a.AgentID.String(), AgentName: a.AgentName})
	}
	topIDs := make([]uuid.UUID, 0, len(top))
	for _, a := range top {
		topIDs = append(topIDs, a.AgentID)
	}

	return &AgentAnalytics{
		RangeDays:          rangeDays,
		Agents:             agents,
		TopAgents:          topAgents,
		ProductivityTrends: s.cal.ProductivityTrends(resolved, topIDs, start, analytics.WeekCount(rangeDays)),
	}, nil
}

func (s *analyticsService) Tickets(ctx context.Context, rawRange string) (*TicketAnalytics, error) {
	ctx, span, rd, rangeDays, err := s.begin(ctx, "analytics.tickets", rawRange)
	if err != nil {
		return nil, err
	}
	defer span.End()

	scope := ticketScope(rd)
	now := s.now()
	start := s.cal.WindowStart(now, rangeDays)
	months := analytics.MonthCount(rangeDays)
	monthStart := s.cal.MonthWindowStart(now, months)

	var (
		created, monthly, resolved []types.TicketReportRow
		priorities                 map[types.TicketPriority]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		created, err = loadReportRows(gctx, s.ticketRepo, "created_tickets", repos.TicketReportFilter{Scope: scope, CreatedFrom: &start})
		return err
	})
	g.Go(func() (err error) {
		monthly, err = loadReportRows(gctx, s.ticketRepo, "monthly_tickets", repos.TicketReportFilter{Scope: scope, CreatedFrom: &monthStart})
		return err
	})
	g.Go(func() (err error) {
		resolved, err = loadReportRows(gctx, s.ticketRepo, "resolved_tickets", repos.TicketReportFilter{Scope: scope, ResolvedFrom: &start})
		return err
	})
	g.Go(func() (err error) {
		priorities, err = loadPriorityCounts(gctx, s.ticketRepo, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weeks := analytics.WeekCount(rangeDays)
	daily := s.cal.DailyCounts(created, start, rangeDays)
	categories := make([]CategoryCount, 0, len(types.TicketPriorities))
	for _, p := range analytics.PriorityDistribution(priorities) {
		categories = append(categories, CategoryCount{Category: p.Priority, Count: p.Count})
	}

	return &TicketAnalytics{
		RangeDays:            rangeDays,
		Daily:                daily,
		Weekly:               s.cal.WeeklyCounts(created, start, weeks),
		Monthly:              s.cal.MonthlyCounts(monthly, now, months),
		PeakPeriods:          analytics.PeakPeriods(daily),
		CategoryDistribution: categories,
		ResolutionTrends:     s.cal.ResolutionTrends(resolved, start, weeks),
	}, nil
}
