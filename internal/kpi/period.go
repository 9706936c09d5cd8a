// Package kpi computes dashboard aggregates over the imported records.
//
// Everything here derives from clean stored rows; no parsing or normalization
// happens at this layer. Aggregation runs in memory over one period's rows,
// which stays comfortably small (a busy month is a few thousand chats).
package kpi

import (
	"fmt"
	"time"
)

// Timeframe selects the dashboard window.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// Period is a resolved half-open window [Start, End).
type Period struct {
	Timeframe Timeframe `json:"timeframe"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
}

var italianMonthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// ResolvePeriod anchors a timeframe to the window containing anchor.
// Weeks run Monday through Sunday (ISO), months and years are calendar.
func ResolvePeriod(tf Timeframe, anchor time.Time) (Period, error) {
	anchor = anchor.UTC()
	y, m, d := anchor.Date()

	switch tf {
	case TimeframeWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		// time.Weekday has Sunday = 0; shift so Monday starts the week.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		isoYear, isoWeek := start.ISOWeek()
		return Period{
			Timeframe: tf,
			Start:     start,
			End:       start.AddDate(0, 0, 7),
			Label:     fmt.Sprintf("Settimana %d, %d", isoWeek, isoYear),
		}, nil

	case TimeframeMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Timeframe: tf,
			Start:     start,
			End:       start.AddDate(0, 1, 0),
			Label:     fmt.Sprintf("%s %d", italianMonthNames[m-1], y),
		}, nil

	case TimeframeYear:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Timeframe: tf,
			Start:     start,
			End:       start.AddDate(1, 0, 0),
			Label:     fmt.Sprintf("Anno %d", y),
		}, nil
	}
	return Period{}, fmt.Errorf("unknown timeframe %q", tf)
}

// Previous returns the adjacent earlier window of the same timeframe.
func (p Period) Previous() Period {
	prev, _ := ResolvePeriod(p.Timeframe, p.Start.AddDate(0, 0, -1))
	return prev
}

// DateRange returns the period bounds as YYYY-MM-DD strings, inclusive on
// both ends, for the date-keyed tables.
func (p Period) DateRange() (string, string) {
	return p.Start.Format("2006-01-02"), p.End.AddDate(0, 0, -1).Format("2006-01-02")
}
