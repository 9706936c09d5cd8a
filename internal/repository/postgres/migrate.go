package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS chat_events (
		chat_id      TEXT PRIMARY KEY,
		operator     TEXT NOT NULL,
		created_at   TIMESTAMPTZ,
		closed_at    TIMESTAMPTZ,
		wait_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		imported_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_events_created_at ON chat_events (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_events_operator ON chat_events (operator)`,

	`CREATE TABLE IF NOT EXISTS training_sessions (
		id               UUID PRIMARY KEY,
		topic            TEXT NOT NULL,
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		operator         TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL,
		imported_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_training_sessions_created_at ON training_sessions (created_at)`,

	`CREATE TABLE IF NOT EXISTS ticket_snapshots_support (
		snapshot_date           DATE PRIMARY KEY,
		new_tickets             INTEGER NOT NULL DEFAULT 0,
		waiting_tickets         INTEGER NOT NULL DEFAULT 0,
		closed_tickets          INTEGER NOT NULL DEFAULT 0,
		backlog                 INTEGER NOT NULL DEFAULT 0,
		satisfaction_good       INTEGER NOT NULL DEFAULT 0,
		satisfaction_ok         INTEGER NOT NULL DEFAULT 0,
		satisfaction_bad        INTEGER NOT NULL DEFAULT 0,
		sla_first_response_mins INTEGER NOT NULL DEFAULT 0,
		sla_response_mins       INTEGER NOT NULL DEFAULT 0,
		sla_resolution_mins     INTEGER NOT NULL DEFAULT 0,
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ticket_snapshots_development (
		snapshot_date           DATE PRIMARY KEY,
		new_tickets             INTEGER NOT NULL DEFAULT 0,
		waiting_tickets         INTEGER NOT NULL DEFAULT 0,
		closed_tickets          INTEGER NOT NULL DEFAULT 0,
		backlog                 INTEGER NOT NULL DEFAULT 0,
		satisfaction_good       INTEGER NOT NULL DEFAULT 0,
		satisfaction_ok         INTEGER NOT NULL DEFAULT 0,
		satisfaction_bad        INTEGER NOT NULL DEFAULT 0,
		sla_first_response_mins INTEGER NOT NULL DEFAULT 0,
		sla_response_mins       INTEGER NOT NULL DEFAULT 0,
		sla_resolution_mins     INTEGER NOT NULL DEFAULT 0,
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS timesheet_entries (
		id            BIGSERIAL PRIMARY KEY,
		entry_date    DATE NOT NULL,
		start_time    TEXT NOT NULL DEFAULT '',
		end_time      TEXT NOT NULL DEFAULT '',
		hours         DOUBLE PRECISION NOT NULL DEFAULT 0,
		activity_type TEXT NOT NULL DEFAULT '',
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_entries_date ON timesheet_entries (entry_date)`,

	`CREATE TABLE IF NOT EXISTS timesheet_activity_types (
		name       TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema. Statements are idempotent; running twice is a
// no-op.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
