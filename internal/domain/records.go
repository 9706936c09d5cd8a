package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportType identifies the logical shape of an uploaded export file.
type ImportType string

const (
	ImportChat     ImportType = "chat"
	ImportTraining ImportType = "training"
	ImportTickets  ImportType = "ticket-daily"
)

// Department is the ticket source grouping. It selects the destination
// snapshot table.
type Department string

const (
	DeptSupport     Department = "support"
	DeptDevelopment Department = "development"
)

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	return d == DeptSupport || d == DeptDevelopment
}

// ChatEvent is one conversation from the chat history export.
// ChatID is the dedup key: re-importing the same file overwrites, never
// duplicates.
type ChatEvent struct {
	ChatID      string
	Operator    string
	CreatedAt   *time.Time
	ClosedAt    *time.Time
	WaitSeconds float64
}

// Duration returns the conversation length in seconds, clamped to zero.
// Source exports occasionally carry a close time earlier than the creation
// time (clock skew on the exporting side); those count as zero rather than
// poisoning averages with negative values.
func (c ChatEvent) Duration() float64 {
	if c.CreatedAt == nil || c.ClosedAt == nil {
		return 0
	}
	d := c.ClosedAt.Sub(*c.CreatedAt).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// TrainingSession is one classified support-note row. Sessions have no
// natural unique key in the source system; ID is generated at import time
// and re-importing the same file inserts new rows (at-least-once).
type TrainingSession struct {
	ID              uuid.UUID
	Topic           string
	Title           string
	Company         string
	Operator        string
	Description     string
	DurationMinutes int
	CreatedAt       time.Time
}

// TicketSnapshot is the daily overview row for one department.
// Date is the upsert key per department table. Backlog is a point-in-time
// gauge, not a cumulative counter.
type TicketSnapshot struct {
	Date                 string // YYYY-MM-DD
	NewTickets           int
	WaitingTickets       int
	ClosedTickets        int
	Backlog              int
	SatisfactionGood     int
	SatisfactionOK       int
	SatisfactionBad      int
	SLAFirstResponseMins int
	SLAResponseMins      int
	SLAResolutionMins    int
}

// TimesheetEntry is a manually logged activity block.
type TimesheetEntry struct {
	ID           int64
	Date         string // YYYY-MM-DD
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	Hours        float64
	ActivityType string
	Notes        string
	CreatedAt    time.Time
}
