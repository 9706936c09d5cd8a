package kpi

import (
	"testing"
	"time"
)

func TestResolvePeriodWeek(t *testing.T) {
	// Wednesday Nov 5 2025 sits in the Mon Nov 3 - Sun Nov 9 week.
	anchor := time.Date(2025, 11, 5, 16, 45, 0, 0, time.UTC)
	p, err := ResolvePeriod(TimeframeWeek, anchor)
	if err != nil {
		t.Fatalf("ResolvePeriod: %v", err)
	}
	if p.Start.Format("2006-01-02") != "2025-11-03" {
		t.Errorf("Start = %s, want 2025-11-03", p.Start.Format("2006-01-02"))
	}
	if p.End.Format("2006-01-02") != "2025-11-10" {
		t.Errorf("End = %s, want 2025-11-10", p.End.Format("2006-01-02"))
	}
	if p.Label != "Settimana 45, 2025" {
		t.Errorf("Label = %q", p.Label)
	}
}

func TestResolvePeriodWeekOnMonday(t *testing.T) {
	anchor := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	p, _ := ResolvePeriod(TimeframeWeek, anchor)
	if !p.Start.Equal(anchor) {
		t.Errorf("Monday anchor start = %v", p.Start)
	}
}

func TestResolvePeriodMonth(t *testing.T) {
	p, err := ResolvePeriod(TimeframeMonth, time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ResolvePeriod: %v", err)
	}
	if p.Start.Format("2006-01-02") != "2025-11-01" || p.End.Format("2006-01-02") != "2025-12-01" {
		t.Errorf("bounds = %v .. %v", p.Start, p.End)
	}
	if p.Label != "Novembre 2025" {
		t.Errorf("Label = %q", p.Label)
	}
}

func TestResolvePeriodYear(t *testing.T) {
	p, _ := ResolvePeriod(TimeframeYear, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if p.Start.Format("2006-01-02") != "2025-01-01" || p.End.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("bounds = %v .. %v", p.Start, p.End)
	}
	if p.Label != "Anno 2025" {
		t.Errorf("Label = %q", p.Label)
	}
}

func TestResolvePeriodUnknown(t *testing.T) {
	if _, err := ResolvePeriod("fortnight", time.Now()); err == nil {
		t.Error("unknown timeframe accepted")
	}
}

func TestPeriodPrevious(t *testing.T) {
	p, _ := ResolvePeriod(TimeframeMonth, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	prev := p.Previous()
	if prev.Start.Format("2006-01-02") != "2024-12-01" {
		t.Errorf("previous month start = %v", prev.Start)
	}

	w, _ := ResolvePeriod(TimeframeWeek, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	if w.Previous().Start.Format("2006-01-02") != "2025-10-27" {
		t.Errorf("previous week start = %v", w.Previous().Start)
	}
}

func TestPeriodDateRange(t *testing.T) {
	p, _ := ResolvePeriod(TimeframeMonth, time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC))
	from, to := p.DateRange()
	if from != "2025-11-01" || to != "2025-11-30" {
		t.Errorf("DateRange = %s .. %s", from, to)
	}
}
