package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/domain/ticket"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func resolvedRow(assignee *uuid.UUID, status ticket.Status, created time.Time, resolved *time.Time) ticket.ReportRow {
	return ticket.ReportRow{
		ID:           uuid.New(),
		Status:       status,
		Priority:     ticket.PriorityMedium,
		AssignedToID: assignee,
		CreatedAt:    created,
		ResolvedAt:   resolved,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestDailyCounts(t *testing.T) {
	cal := NewCalendar(time.UTC)
	rows := []ticket.ReportRow{
		{CreatedAt: at(2024, 3, 1, 10, 0)},
		{CreatedAt: at(2024, 3, 1, 23, 59)},
		{CreatedAt: at(2024, 3, 3, 0, 0)},
		{CreatedAt: at(2024, 2, 29, 12, 0)},
	}
	got := cal.DailyCounts(rows, at(2024, 3, 1, 0, 0), 3)
	want := []DayCount{{"2024-03-01", 2}, {"2024-03-02", 0}, {"2024-03-03", 1}}
	if len(got) != len(want) {
		t.Fatalf("DailyCounts: len=%d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DailyCounts[%d]: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestWeeklyAndMonthlyCounts(t *testing.T) {
	cal := NewCalendar(time.UTC)
	rows := []ticket.ReportRow{
		{CreatedAt: at(2024, 3, 12, 9, 0)},
		{CreatedAt: at(2024, 3, 17, 22, 0)},
		{CreatedAt: at(2024, 3, 18, 1, 0)},
	}
	weekly := cal.WeeklyCounts(rows, at(2024, 3, 13, 0, 0), 2)
	if len(weekly) != 2 {
		t.Fatalf("WeeklyCounts: len=%d", len(weekly))
	}
	if weekly[0] != (PeriodCount{"2024-03-11", 2}) || weekly[1] != (PeriodCount{"2024-03-18", 1}) {
		t.Fatalf("WeeklyCounts: got=%+v", weekly)
	}

	monthRows := []ticket.ReportRow{
		{CreatedAt: at(2024, 1, 5, 0, 0)},
		{CreatedAt: at(2024, 3, 1, 0, 0)},
		{CreatedAt: at(2024, 3, 12, 0, 0)},
	}
	monthly := cal.MonthlyCounts(monthRows, at(2024, 3, 13, 0, 0), 3)
	want := []PeriodCount{{"2024-01-01", 1}, {"2024-02-01", 0}, {"2024-03-01", 2}}
	for i := range want {
		if monthly[i] != want[i] {
			t.Fatalf("MonthlyCounts[%d]: got=%+v want=%+v", i, monthly[i], want[i])
		}
	}
}

func TestResolutionTrends(t *testing.T) {
	cal := NewCalendar(time.UTC)
	rows := []ticket.ReportRow{
		resolvedRow(nil, ticket.StatusResolved, at(2024, 3, 4, 0, 0), ptr(at(2024, 3, 4, 10, 0))),
		resolvedRow(nil, ticket.StatusResolved, at(2024, 3, 3, 0, 0), ptr(at(2024, 3, 5, 0, 0))),
		resolvedRow(nil, ticket.StatusClosed, at(2024, 3, 12, 0, 0), ptr(at(2024, 3, 12, 1, 30))),
		resolvedRow(nil, ticket.StatusOpen, at(2024, 3, 12, 0, 0), nil),
	}
	got := cal.ResolutionTrends(rows, at(2024, 3, 4, 0, 0), 3)
	want := []PeriodAverage{{"2024-03-04", 29}, {"2024-03-11", 2}, {"2024-03-18", 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResolutionTrends[%d]: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestAverageResolutionHours(t *testing.T) {
	if got := AverageResolutionHours(nil); got != 0 {
		t.Fatalf("empty: got=%d", got)
	}
	open := []ticket.ReportRow{resolvedRow(nil, ticket.StatusOpen, at(2024, 3, 1, 0, 0), nil)}
	if got := AverageResolutionHours(open); got != 0 {
		t.Fatalf("unresolved: got=%d", got)
	}
	rows := []ticket.ReportRow{
		resolvedRow(nil, ticket.StatusResolved, at(2024, 3, 1, 0, 0), ptr(at(2024, 3, 1, 1, 0))),
		resolvedRow(nil, ticket.StatusResolved, at(2024, 3, 1, 0, 0), ptr(at(2024, 3, 1, 2, 0))),
	}
	if got := AverageResolutionHours(rows); got != 2 {
		t.Fatalf("avg: got=%d want=2", got)
	}
}

func TestAgentPerformance(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	day := at(2024, 3, 1, 0, 0)
	rows := []ticket.ReportRow{
		resolvedRow(&a, ticket.StatusOpen, day, nil),
		resolvedRow(&b, ticket.StatusResolved, day, ptr(day.Add(4*time.Hour))),
		resolvedRow(&b, ticket.StatusClosed, day, ptr(day.Add(3*time.Hour))),
		resolvedRow(&a, ticket.StatusResolved, day, ptr(day.Add(6*time.Hour))),
		resolvedRow(&c, ticket.StatusClosed, day, nil),
		resolvedRow(nil, ticket.StatusResolved, day, ptr(day.Add(time.Hour))),
	}
	names := map[uuid.UUID]string{a: "Alice", b: "Bob"}

	all := AgentPerformance(rows, names, 0)
	if len(all) != 3 {
		t.Fatalf("AgentPerformance: len=%d", len(all))
	}
	wantB := AgentStats{AgentID: b, AgentName: "Bob", Assigned: 2, Resolved: 2, Open: 0, AvgResolutionHours: 4}
	wantA := AgentStats{AgentID: a, AgentName: "Alice", Assigned: 2, Resolved: 1, Open: 1, AvgResolutionHours: 6}
	wantC := AgentStats{AgentID: c, AgentName: "Unassigned", Assigned: 1, Resolved: 1, Open: 0, AvgResolutionHours: 0}
	if all[0] != wantB || all[1] != wantA || all[2] != wantC {
		t.Fatalf("AgentPerformance: got=%+v", all)
	}

	top := AgentPerformance(rows, names, 2)
	if len(top) != 2 || top[0].AgentID != b || top[1].AgentID != a {
		t.Fatalf("AgentPerformance limit: got=%+v", top)
	}
}

func TestProductivityTrends(t *testing.T) {
	cal := NewCalendar(time.UTC)
	a, b := uuid.New(), uuid.New()
	rows := []ticket.ReportRow{
		resolvedRow(&a, ticket.StatusResolved, at(2024, 3, 4, 0, 0), ptr(at(2024, 3, 5, 0, 0))),
		resolvedRow(&a, ticket.StatusResolved, at(2024, 3, 4, 0, 0), ptr(at(2024, 3, 12, 0, 0))),
		resolvedRow(&b, ticket.StatusResolved, at(2024, 3, 4, 0, 0), ptr(at(2024, 3, 5, 0, 0))),
		resolvedRow(&a, ticket.StatusOpen, at(2024, 3, 4, 0, 0), nil),
	}
	got := cal.ProductivityTrends(rows, []uuid.UUID{a}, at(2024, 3, 4, 0, 0), 2)
	if len(got) != 2 {
		t.Fatalf("ProductivityTrends: len=%d", len(got))
	}
	if got[0].Period != "2024-03-04" || got[0].Counts[a.String()] != 1 {
		t.Fatalf("ProductivityTrends[0]: got=%+v", got[0])
	}
	if _, ok := got[0].Counts[b.String()]; ok {
		t.Fatalf("ProductivityTrends[0]: non-top agent leaked")
	}
	if got[1].Period != "2024-03-11" || got[1].Counts[a.String()] != 1 {
		t.Fatalf("ProductivityTrends[1]: got=%+v", got[1])
	}

	raw, err := json.Marshal(got[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]interface{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if flat["period"] != "2024-03-04" || flat[a.String()] != float64(1) {
		t.Fatalf("flat json: got=%s", raw)
	}
}

func TestPeakPeriods(t *testing.T) {
	daily := []DayCount{{"d1", 0}, {"d2", 3}, {"d3", 1}, {"d4", 3}, {"d5", 2}, {"d6", 1}}
	got := PeakPeriods(daily)
	want := []string{"d2", "d4", "d5", "d3"}
	if len(got) != len(want) {
		t.Fatalf("PeakPeriods: got=%+v", got)
	}
	for i, d := range want {
		if got[i].Date != d {
			t.Fatalf("PeakPeriods[%d]: got=%s want=%s", i, got[i].Date, d)
		}
	}
	if daily[0].Date != "d1" {
		t.Fatalf("PeakPeriods mutated its input")
	}

	sparse := PeakPeriods([]DayCount{{"x", 0}, {"y", 1}})
	if len(sparse) != 1 || sparse[0].Date != "y" {
		t.Fatalf("PeakPeriods sparse: got=%+v", sparse)
	}
}

func TestDistributions(t *testing.T) {
	statuses := StatusDistribution(map[ticket.Status]int64{ticket.StatusOpen: 2})
	if len(statuses) != 4 || statuses[0] != (StatusCount{ticket.StatusOpen, 2}) || statuses[3] != (StatusCount{ticket.StatusClosed, 0}) {
		t.Fatalf("StatusDistribution: got=%+v", statuses)
	}
	priorities := PriorityDistribution(map[ticket.Priority]int64{ticket.PriorityUrgent: 1})
	if len(priorities) != 4 || priorities[3] != (PriorityCount{ticket.PriorityUrgent, 1}) {
		t.Fatalf("PriorityDistribution: got=%+v", priorities)
	}

	s := Summarize(
		[]ticket.ReportRow{{}, {}, {}},
		[]ticket.ReportRow{resolvedRow(nil, ticket.StatusResolved, at(2024, 3, 1, 0, 0), ptr(at(2024, 3, 1, 5, 0)))},
	)
	if s != (PeriodSummary{Created: 3, Resolved: 1, AvgResolutionHours: 5}) {
		t.Fatalf("Summarize: got=%+v", s)
	}
}
