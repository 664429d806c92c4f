// Package analytics holds the reporting reductions behind the dashboard and
// analytics endpoints. Nothing here touches the database; callers load
// ticket.ReportRow slices and hand them in.
package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRangeDays = 90
	MinRangeDays     = 30
	MaxRangeDays     = 180
)

// ClampRangeDays parses the rangeDays query value. Empty or unparseable input
// yields the default; anything else is clamped into [30, 180].
func ClampRangeDays(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRangeDays
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return DefaultRangeDays
	}
	if f < MinRangeDays {
		return MinRangeDays
	}
	if f > MaxRangeDays {
		return MaxRangeDays
	}
	return int(math.Floor(f))
}

// WeekCount is the number of weekly buckets shown for a window.
func WeekCount(rangeDays int) int {
	n := int(math.Ceil(float64(rangeDays) / 7))
	if n < 4 {
		return 4
	}
	return n
}

// MonthCount is the number of monthly buckets shown for a window.
func MonthCount(rangeDays int) int {
	n := int(math.Ceil(float64(rangeDays) / 30))
	if n < 3 {
		return 3
	}
	return n
}

// Round is half-up rounding to the nearest integer.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Calendar buckets timestamps by day, week and month in one location.
// Weeks start on Monday.
type Calendar struct {
	Loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Loc: loc}
}

func (c Calendar) loc() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

// StartOfDay is local midnight of t's day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// AddDays moves by calendar days, so DST transitions keep midnight aligned.
func (c Calendar) AddDays(t time.Time, days int) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day()+days, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc())
}

// StartOfWeek is midnight of the Monday on or before t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	d := c.StartOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return c.AddDays(d, -offset)
}

func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc())
}

// DayKey formats t as YYYY-MM-DD.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.loc()).Format("2006-01-02")
}

// WeekKey is the DayKey of the Monday starting t's week.
func (c Calendar) WeekKey(t time.Time) string {
	return c.DayKey(c.StartOfWeek(t))
}

// MonthKey is YYYY-MM-01 of t's month.
func (c Calendar) MonthKey(t time.Time) string {
	return c.DayKey(c.StartOfMonth(t))
}

// WindowStart is midnight days-1 days before now, so the window holds
// exactly days calendar days including today.
func (c Calendar) WindowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return c.AddDays(c.StartOfDay(now), -(days - 1))
}

// MonthWindowStart is the first of the month months-1 months before now.
func (c Calendar) MonthWindowStart(now time.Time, months int) time.Time {
	if months < 1 {
		months = 1
	}
	m := c.StartOfMonth(now)
	return time.Date(m.Year(), m.Month()-time.Month(months-1), 1, 0, 0, 0, 0, c.loc())
}

// WeekKeys lists the week key of start, start+7d, ... for count buckets.
func (c Calendar) WeekKeys(start time.Time, count int) []string {
	keys := make([]string, 0, count)
	for i := 0; i < count; i++ {
		keys = append(keys, c.WeekKey(c.AddDays(start, i*7)))
	}
	return keys
}
