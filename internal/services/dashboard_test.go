package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
)

// Wednesday, so the current week started two days earlier.
var reportNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type reportSeed struct {
	admin, alice, bob *types.User
}

// seedReports lays out four tickets around reportNow:
// alice: one open HIGH she created, one RESOLVED assigned to her (10h).
// bob: one CLOSED assigned to him (4h), one IN_PROGRESS URGENT he created.
func seedReports(t *testing.T, f *fixture) reportSeed {
	t.Helper()
	ctx := context.Background()
	s := reportSeed{
		admin: f.seedUser(t, "admin@example.com", types.RoleAdmin),
		alice: f.seedUser(t, "alice@example.com", types.RoleStaff),
		bob:   f.seedUser(t, "bob@example.com", types.RoleStaff),
	}
	at := func(days, hours int) time.Time {
		return reportNow.Add(-time.Duration(days) * 24 * time.Hour).Add(time.Duration(hours) * time.Hour)
	}
	resolvedAt := func(days, hours int) *time.Time {
		r := at(days, hours)
		return &r
	}

	t1 := testutil.SeedTicket(t, ctx, f.db, s.alice.ID, testutil.TicketOpts{
		Priority:  types.TicketPriorityHigh,
		CreatedAt: at(2, 0),
	})
	t2 := testutil.SeedTicket(t, ctx, f.db, s.admin.ID, testutil.TicketOpts{
		Status:     types.TicketStatusResolved,
		AssignedTo: &s.alice.ID,
		CreatedAt:  at(10, 0),
		ResolvedAt: resolvedAt(10, 10),
	})
	testutil.SeedTicket(t, ctx, f.db, s.admin.ID, testutil.TicketOpts{
		Status:     types.TicketStatusClosed,
		AssignedTo: &s.bob.ID,
		CreatedAt:  at(5, 0),
		ResolvedAt: resolvedAt(5, 4),
	})
	testutil.SeedTicket(t, ctx, f.db, s.bob.ID, testutil.TicketOpts{
		Status:    types.TicketStatusInProgress,
		Priority:  types.TicketPriorityUrgent,
		CreatedAt: at(1, 0),
	})

	testutil.SeedActivity(t, ctx, f.db, t1.ID, s.alice.ID, "created", at(2, 0))
	testutil.SeedActivity(t, ctx, f.db, t2.ID, s.admin.ID, "created", at(10, 0))
	testutil.SeedActivity(t, ctx, f.db, t2.ID, s.alice.ID, "status_changed", at(10, 10))
	return s
}

func (f *fixture) dashboardService(t *testing.T) DashboardService {
	svc := NewDashboardService(f.db, testutil.Logger(t), f.tickets, f.acts, f.users, f.cal)
	svc.(*dashboardService).now = func() time.Time { return reportNow }
	return svc
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	s := seedReports(t, f)
	svc := f.dashboardService(t)

	stats, err := svc.Stats(as(s.admin))
	if err != nil {
		t.Fatalf("Stats(admin): %v", err)
	}
	if stats.TotalTickets != 4 || stats.OpenTickets != 1 || stats.InProgressTickets != 1 || stats.ResolvedTickets != 1 {
		t.Fatalf("admin totals: got=%+v", stats)
	}
	if stats.AvgResolutionTime != 10 {
		t.Fatalf("avgResolutionTime: got=%d", stats.AvgResolutionTime)
	}
	if len(stats.TicketsByPriority) != len(types.TicketPriorities) {
		t.Fatalf("ticketsByPriority keys: got=%v", stats.TicketsByPriority)
	}
	if stats.TicketsByPriority[types.TicketPriorityLow] != 0 || stats.TicketsByPriority[types.TicketPriorityMedium] != 2 {
		t.Fatalf("ticketsByPriority: got=%v", stats.TicketsByPriority)
	}
	if len(stats.RecentTickets) != 4 {
		t.Fatalf("recentTickets: got=%d", len(stats.RecentTickets))
	}
	if stats.RecentTickets[0].Priority != types.TicketPriorityUrgent {
		t.Fatalf("recentTickets not newest first: got=%s", stats.RecentTickets[0].Priority)
	}

	mine, err := svc.Stats(as(s.alice))
	if err != nil {
		t.Fatalf("Stats(alice): %v", err)
	}
	if mine.TotalTickets != 2 || mine.OpenTickets != 1 || mine.ResolvedTickets != 1 || mine.InProgressTickets != 0 {
		t.Fatalf("alice totals: got=%+v", mine)
	}

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("Stats without caller: expected error")
	}
}

func TestDashboardOverview(t *testing.T) {
	f := newFixture(t)
	s := seedReports(t, f)
	svc := f.dashboardService(t)

	ov, err := svc.Overview(as(s.admin))
	if err != nil {
		t.Fatalf("Overview(admin): %v", err)
	}
	if len(ov.TicketVolume) != dashboardVolumeDays {
		t.Fatalf("ticketVolume days: got=%d", len(ov.TicketVolume))
	}
	if last := ov.TicketVolume[len(ov.TicketVolume)-1]; last.Date != "2024-05-15" {
		t.Fatalf("ticketVolume last day: got=%s", last.Date)
	}
	var created int
	for _, d := range ov.TicketVolume {
		created += d.Count
	}
	if created != 4 {
		t.Fatalf("ticketVolume total: got=%d", created)
	}
	if len(ov.ResolutionTrends) != dashboardTrendWeeks {
		t.Fatalf("resolutionTrends weeks: got=%d", len(ov.ResolutionTrends))
	}
	if len(ov.TicketsByStatus) != len(types.TicketStatuses) || len(ov.TicketsByPriority) != len(types.TicketPriorities) {
		t.Fatalf("distributions: status=%d priority=%d", len(ov.TicketsByStatus), len(ov.TicketsByPriority))
	}
	if len(ov.AgentPerformance) != 2 {
		t.Fatalf("agentPerformance: got=%+v", ov.AgentPerformance)
	}
	for _, a := range ov.AgentPerformance {
		if a.Resolved != 1 || a.Assigned != 1 {
			t.Fatalf("agent %s: got=%+v", a.AgentName, a)
		}
	}
	if ov.KPIs.AvgResolutionHours != 7 {
		t.Fatalf("kpi avgResolutionHours: got=%d", ov.KPIs.AvgResolutionHours)
	}
	if len(ov.RecentActivities) != 3 {
		t.Fatalf("recentActivities: got=%d", len(ov.RecentActivities))
	}

	bobView, err := svc.Overview(as(s.bob))
	if err != nil {
		t.Fatalf("Overview(bob): %v", err)
	}
	if bobView.KPIs.TotalTickets != 2 {
		t.Fatalf("bob total: got=%d", bobView.KPIs.TotalTickets)
	}
	if len(bobView.RecentActivities) != 0 {
		t.Fatalf("bob should see no activities: got=%d", len(bobView.RecentActivities))
	}
	if len(bobView.AgentPerformance) != 1 || bobView.AgentPerformance[0].AgentID != s.bob.ID {
		t.Fatalf("bob agentPerformance: got=%+v", bobView.AgentPerformance)
	}
}
