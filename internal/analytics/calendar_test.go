package analytics

import (
	"testing"
	"time"
)

func TestClampRangeDays(t *testing.T) {
	cases := map[string]int{
		"":     90,
		"abc":  90,
		"10":   30,
		"0":    30,
		"-5":   30,
		"45":   45,
		" 60 ": 60,
		"60.9": 60,
		"500":  180,
	}
	for in, want := range cases {
		if got := ClampRangeDays(in); got != want {
			t.Fatalf("ClampRangeDays(%q): got=%d want=%d", in, got, want)
		}
	}
}

func TestBucketCounts(t *testing.T) {
	weeks := map[int]int{7: 4, 30: 5, 90: 13, 180: 26}
	for days, want := range weeks {
		if got := WeekCount(days); got != want {
			t.Fatalf("WeekCount(%d): got=%d want=%d", days, got, want)
		}
	}
	months := map[int]int{30: 3, 90: 3, 91: 4, 180: 6}
	for days, want := range months {
		if got := MonthCount(days); got != want {
			t.Fatalf("MonthCount(%d): got=%d want=%d", days, got, want)
		}
	}
}

func TestRound(t *testing.T) {
	cases := map[float64]int{0: 0, 2.4999: 2, 2.5: 3, 3.5: 4, 10: 10}
	for in, want := range cases {
		if got := Round(in); got != want {
			t.Fatalf("Round(%v): got=%d want=%d", in, got, want)
		}
	}
}

func TestCalendarKeys(t *testing.T) {
	cal := NewCalendar(time.UTC)

	wed := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	if got := cal.DayKey(wed); got != "2024-03-13" {
		t.Fatalf("DayKey: got=%s", got)
	}
	if got := cal.WeekKey(wed); got != "2024-03-11" {
		t.Fatalf("WeekKey(wed): got=%s", got)
	}
	sun := time.Date(2024, 3, 17, 23, 59, 0, 0, time.UTC)
	if got := cal.WeekKey(sun); got != "2024-03-11" {
		t.Fatalf("WeekKey(sun): got=%s", got)
	}
	mon := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	if got := cal.WeekKey(mon); got != "2024-03-18" {
		t.Fatalf("WeekKey(mon): got=%s", got)
	}
	if got := cal.MonthKey(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)); got != "2024-02-01" {
		t.Fatalf("MonthKey: got=%s", got)
	}

	start := cal.WindowStart(wed, 30)
	if !start.Equal(time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("WindowStart: got=%v", start)
	}
	if got := cal.MonthWindowStart(wed, 3); !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("MonthWindowStart(3): got=%v", got)
	}
	if got := cal.MonthWindowStart(wed, 5); !got.Equal(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("MonthWindowStart(5): got=%v", got)
	}
}

func TestCalendarUsesLocation(t *testing.T) {
	cal := NewCalendar(time.FixedZone("UTC-5", -5*3600))

	// Monday 03:00 UTC is still Sunday evening five hours west.
	ts := time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC)
	if got := cal.DayKey(ts); got != "2024-03-10" {
		t.Fatalf("DayKey: got=%s", got)
	}
	if got := cal.WeekKey(ts); got != "2024-03-04" {
		t.Fatalf("WeekKey: got=%s", got)
	}
	if got := NewCalendar(nil).WeekKey(ts); got != "2024-03-11" {
		t.Fatalf("WeekKey(utc): got=%s", got)
	}
}
