package analytics

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/domain/ticket"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

type PeriodAverage struct {
	Period   string `json:"period"`
	AvgHours int    `json:"avgHours"`
}

type StatusCount struct {
	Status ticket.Status `json:"status"`
	Count  int64         `json:"count"`
}

type PriorityCount struct {
	Priority ticket.Priority `json:"priority"`
	Count    int64           `json:"count"`
}

type AgentStats struct {
	AgentID            uuid.UUID `json:"agentId"`
	AgentName          string    `json:"agentName"`
	Assigned           int       `json:"assigned"`
	Resolved           int       `json:"resolved"`
	Open               int       `json:"open"`
	AvgResolutionHours int       `json:"avgResolutionHours"`
}

// ProductivityPoint serializes flat: {"period": "...", "<agentId>": n, ...}.
type ProductivityPoint struct {
	Period string
	Counts map[string]int
}

func (p ProductivityPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Counts)+1)
	for k, v := range p.Counts {
		out[k] = v
	}
	out["period"] = p.Period
	return json.Marshal(out)
}

type PeriodSummary struct {
	Created            int `json:"created"`
	Resolved           int `json:"resolved"`
	AvgResolutionHours int `json:"avgResolutionHours"`
}

// DailyCounts buckets rows by creation day over days consecutive days from
// start. Every day is present, zero when empty.
func (c Calendar) DailyCounts(rows []ticket.ReportRow, start time.Time, days int) []DayCount {
	counts := make(map[string]int, days)
	for _, r := range rows {
		counts[c.DayKey(r.CreatedAt)]++
	}
	out := make([]DayCount, 0, days)
	for i := 0; i < days; i++ {
		key := c.DayKey(c.AddDays(start, i))
		out = append(out, DayCount{Date: key, Count: counts[key]})
	}
	return out
}

// WeeklyCounts buckets rows by the week they were created in.
func (c Calendar) WeeklyCounts(rows []ticket.ReportRow, start time.Time, weeks int) []PeriodCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[c.WeekKey(r.CreatedAt)]++
	}
	keys := c.WeekKeys(start, weeks)
	out := make([]PeriodCount, 0, len(keys))
	for _, key := range keys {
		out = append(out, PeriodCount{Period: key, Count: counts[key]})
	}
	return out
}

// MonthlyCounts buckets rows by creation month, months buckets ending with
// the month containing now.
func (c Calendar) MonthlyCounts(rows []ticket.ReportRow, now time.Time, months int) []PeriodCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[c.MonthKey(r.CreatedAt)]++
	}
	start := c.MonthWindowStart(now, months)
	out := make([]PeriodCount, 0, months)
	for i := 0; i < months; i++ {
		m := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, c.loc())
		key := c.MonthKey(m)
		out = append(out, PeriodCount{Period: key, Count: counts[key]})
	}
	return out
}

// ResolutionTrends averages resolution hours per week of resolution.
// Rows without a resolution timestamp are ignored.
func (c Calendar) ResolutionTrends(rows []ticket.ReportRow, start time.Time, weeks int) []PeriodAverage {
	type acc struct {
		total float64
		count int
	}
	byWeek := make(map[string]*acc)
	for _, r := range rows {
		h, ok := r.ResolutionHours()
		if !ok {
			continue
		}
		key := c.WeekKey(*r.ResolvedAt)
		a := byWeek[key]
		if a == nil {
			a = &acc{}
			byWeek[key] = a
		}
		a.total += h
		a.count++
	}
	keys := c.WeekKeys(start, weeks)
	out := make([]PeriodAverage, 0, len(keys))
	for _, key := range keys {
		avg := 0
		if a := byWeek[key]; a != nil && a.count > 0 {
			avg = Round(a.total / float64(a.count))
		}
		out = append(out, PeriodAverage{Period: key, AvgHours: avg})
	}
	return out
}

// ProductivityTrends counts resolutions per week for each of agentIDs.
// Every bucket carries every agent, zero when idle.
func (c Calendar) ProductivityTrends(rows []ticket.ReportRow, agentIDs []uuid.UUID, start time.Time, weeks int) []ProductivityPoint {
	keys := c.WeekKeys(start, weeks)
	byWeek := make(map[string]map[string]int, len(keys))
	out := make([]ProductivityPoint, 0, len(keys))
	for _, key := range keys {
		if _, seen := byWeek[key]; seen {
			continue
		}
		counts := make(map[string]int, len(agentIDs))
		for _, id := range agentIDs {
			counts[id.String()] = 0
		}
		byWeek[key] = counts
	}
	wanted := make(map[uuid.UUID]struct{}, len(agentIDs))
	for _, id := range agentIDs {
		wanted[id] = struct{}{}
	}
	for _, r := range rows {
		if r.AssignedToID == nil || r.ResolvedAt == nil {
			continue
		}
		if _, ok := wanted[*r.AssignedToID]; !ok {
			continue
		}
		counts := byWeek[c.WeekKey(*r.ResolvedAt)]
		if counts == nil {
			continue
		}
		counts[r.AssignedToID.String()]++
	}
	for _, key := range keys {
		out = append(out, ProductivityPoint{Period: key, Counts: byWeek[key]})
	}
	return out
}

// AverageResolutionHours is the rounded mean resolution time of the rows
// that have one, 0 when none do.
func AverageResolutionHours(rows []ticket.ReportRow) int {
	var total float64
	var n int
	for _, r := range rows {
		if h, ok := r.ResolutionHours(); ok {
			total += h
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return Round(total / float64(n))
}

// AgentPerformance aggregates assigned rows per assignee. Terminal statuses
// count as resolved. Agents are ordered by resolved count, descending, with
// ties kept in first-seen order; limit <= 0 keeps all of them.
func AgentPerformance(rows []ticket.ReportRow, names map[uuid.UUID]string, limit int) []AgentStats {
	type acc struct {
		stats      AgentStats
		totalHours float64
	}
	byAgent := make(map[uuid.UUID]*acc)
	order := make([]uuid.UUID, 0)
	for _, r := range rows {
		if r.AssignedToID == nil {
			continue
		}
		id := *r.AssignedToID
		a := byAgent[id]
		if a == nil {
			name := names[id]
			if name == "" {
				name = "Unassigned"
			}
			a = &acc{stats: AgentStats{AgentID: id, AgentName: name}}
			byAgent[id] = a
			order = append(order, id)
		}
		a.stats.Assigned++
		if r.Status.IsTerminal() {
			a.stats.Resolved++
			if h, ok := r.ResolutionHours(); ok {
				a.totalHours += h
			}
		} else {
			a.stats.Open++
		}
	}

	out := make([]AgentStats, 0, len(order))
	for _, id := range order {
		a := byAgent[id]
		if a.stats.Resolved > 0 {
			a.stats.AvgResolutionHours = Round(a.totalHours / float64(a.stats.Resolved))
		}
		out = append(out, a.stats)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Resolved > out[j].Resolved })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PeakPeriods returns the four busiest days, dropping empty ones. Ties keep
// chronological order.
func PeakPeriods(daily []DayCount) []DayCount {
	sorted := make([]DayCount, len(daily))
	copy(sorted, daily)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if len(sorted) > 4 {
		sorted = sorted[:4]
	}
	out := make([]DayCount, 0, len(sorted))
	for _, d := range sorted {
		if d.Count > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Summarize reports activity since a period start: created is the rows
// created in the period, resolved the rows resolved in it.
func Summarize(created, resolved []ticket.ReportRow) PeriodSummary {
	return PeriodSummary{
		Created:            len(created),
		Resolved:           len(resolved),
		AvgResolutionHours: AverageResolutionHours(resolved),
	}
}

// StatusDistribution lists every status in workflow order.
func StatusDistribution(counts map[ticket.Status]int64) []StatusCount {
	out := make([]StatusCount, 0, len(ticket.Statuses))
	for _, s := range ticket.Statuses {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// PriorityDistribution lists every priority from LOW to URGENT.
func PriorityDistribution(counts map[ticket.Priority]int64) []PriorityCount {
	out := make([]PriorityCount, 0, len(ticket.Priorities))
	for _, p := range ticket.Priorities {
		out = append(out, PriorityCount{Priority: p, Count: counts[p]})
	}
	return out
}
