package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
)

func (f *fixture) analyticsService(t *testing.T) AnalyticsService {
	svc := NewAnalyticsService(f.db, testutil.Logger(t), f.tickets, f.users, f.cal)
	svc.(*analyticsService).now = func() time.Time { return reportNow }
	return svc
}

func TestAnalyticsOverview(t *testing.T) {
	f := newFixture(t)
	s := seedReports(t, f)
	svc := f.analyticsService(t)

	ov, err := svc.Overview(as(s.admin), "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.RangeDays != analytics.DefaultRangeDays {
		t.Fatalf("rangeDays: got=%d", ov.RangeDays)
	}
	want := AnalyticsTotals{TotalTickets: 4, OpenTickets: 1, InProgressTickets: 1, ResolvedTickets: 1, ClosedTickets: 1}
	if ov.Totals != want {
		t.Fatalf("totals: got=%+v", ov.Totals)
	}
	if len(ov.TicketVolume) != ov.RangeDays {
		t.Fatalf("ticketVolume: got=%d", len(ov.TicketVolume))
	}
	if len(ov.ResolutionTrends) != analytics.WeekCount(ov.RangeDays) {
		t.Fatalf("resolutionTrends: got=%d", len(ov.ResolutionTrends))
	}
	if len(ov.AgentPerformance) != 2 {
		t.Fatalf("agentPerformance: got=%+v", ov.AgentPerformance)
	}
	// week of 2024-05-13 holds the two newest tickets
	if ov.Summaries.Week.Created != 2 || ov.Summaries.Week.Resolved != 0 {
		t.Fatalf("week summary: got=%+v", ov.Summaries.Week)
	}
	if ov.Summaries.Month.Created != 4 || ov.Summaries.Month.Resolved != 2 || ov.Summaries.Month.AvgResolutionHours != 7 {
		t.Fatalf("month summary: got=%+v", ov.Summaries.Month)
	}

	clamped, err := svc.Overview(as(s.alice), "7")
	if err != nil {
		t.Fatalf("Overview(alice): %v", err)
	}
	if clamped.RangeDays != analytics.MinRangeDays {
		t.Fatalf("clamped rangeDays: got=%d", clamped.RangeDays)
	}
	if clamped.Totals.TotalTickets != 2 || clamped.Totals.ClosedTickets != 0 {
		t.Fatalf("alice totals: got=%+v", clamped.Totals)
	}
}

func TestAnalyticsAgents(t *testing.T) {
	f := newFixture(t)
	s := seedReports(t, f)
	svc := f.analyticsService(t)

	all, err := svc.Agents(as(s.admin), "180")
	if err != nil {
		t.Fatalf("Agents(admin): %v", err)
	}
	if len(all.Agents) != 2 || len(all.TopAgents) != 2 {
		t.Fatalf("agents: got=%+v top=%+v", all.Agents, all.TopAgents)
	}
	for _, a := range all.Agents {
		if a.Handled != 1 || a.Resolved != 1 || a.Open != 0 {
			t.Fatalf("agent %s: got=%+v", a.AgentName, a)
		}
	}
	if len(all.ProductivityTrends) != analytics.WeekCount(180) {
		t.Fatalf("productivityTrends: got=%d", len(all.ProductivityTrends))
	}

	// alice created one ticket but only the assigned one counts here
	mine, err := svc.Agents(as(s.alice), "")
	if err != nil {
		t.Fatalf("Agents(alice): %v", err)
	}
	if len(mine.Agents) != 1 || mine.Agents[0].AgentID != s.alice.ID.String() {
		t.Fatalf("alice agents: got=%+v", mine.Agents)
	}
	if len(mine.TopAgents) != 1 || mine.TopAgents[0].AgentName != s.alice.Name {
		t.Fatalf("alice topAgents: got=%+v", mine.TopAgents)
	}
	var resolved int
	for _, p := range mine.ProductivityTrends {
		resolved += p.Counts[s.alice.ID.String()]
	}
	if resolved != 1 {
		t.Fatalf("alice productivity: got=%d", resolved)
	}
}

func TestAnalyticsTickets(t *testing.T) {
	f := newFixture(t)
	s := seedReports(t, f)
	svc := f.analyticsService(t)

	rep, err := svc.Tickets(as(s.admin), "60")
	if err != nil {
		t.Fatalf("Tickets: %v", err)
	}
	if len(rep.Daily) != 60 || len(rep.Weekly) != analytics.WeekCount(60) || len(rep.Monthly) != analytics.MonthCount(60) {
		t.Fatalf("buckets: daily=%d weekly=%d monthly=%d", len(rep.Daily), len(rep.Weekly), len(rep.Monthly))
	}
	if got := rep.Monthly[len(rep.Monthly)-1]; got.Period != "2024-05-01" || got.Count != 4 {
		t.Fatalf("current month: got=%+v", got)
	}
	if len(rep.PeakPeriods) != 4 {
		t.Fatalf("peakPeriods: got=%+v", rep.PeakPeriods)
	}
	if len(rep.CategoryDistribution) != len(types.TicketPriorities) {
		t.Fatalf("categoryDistribution: got=%+v", rep.CategoryDistribution)
	}
	for _, c := range rep.CategoryDistribution {
		if c.Category == types.TicketPriorityMedium && c.Count != 2 {
			t.Fatalf("medium count: got=%d", c.Count)
		}
	}

	if _, err := svc.Tickets(context.Background(), ""); err == nil {
		t.Fatalf("Tickets without caller: expected error")
	}
}
