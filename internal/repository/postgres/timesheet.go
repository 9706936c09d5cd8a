package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/pienissimo/opsdash/internal/domain"
)

// ErrNotFound is returned when a timesheet entry does not exist.
var ErrNotFound = errors.New("not found")

// InsertTimesheetEntry creates a manual activity block and returns its id.
func (s *Store) InsertTimesheetEntry(ctx context.Context, e *domain.TimesheetEntry) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO timesheet_entries (entry_date, start_time, end_time, hours, activity_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.Date, e.StartTime, e.EndTime, e.Hours, e.ActivityType, e.Notes).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert timesheet entry: %w", err)
	}
	return nil
}

// ListTimesheetEntries returns entries for [from, to], both YYYY-MM-DD,
// newest day first.
func (s *Store) ListTimesheetEntries(ctx context.Context, from, to string) ([]domain.TimesheetEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, to_char(entry_date, 'YYYY-MM-DD'), start_time, end_time, hours, activity_type, notes, created_at
		FROM timesheet_entries
		WHERE entry_date >= $1 AND entry_date <= $2
		ORDER BY entry_date DESC, start_time
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list timesheet entries: %w", err)
	}
	defer rows.Close()

	var out []domain.TimesheetEntry
	for rows.Next() {
		var e domain.TimesheetEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.StartTime, &e.EndTime, &e.Hours,
			&e.ActivityType, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timesheet entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertActivityType registers a manual activity category. Inserting an
// existing name is a no-op.
func (s *Store) InsertActivityType(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timesheet_activity_types (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("insert activity type: %w", err)
	}
	return nil
}

// ListActivityTypes returns all activity categories alphabetically.
func (s *Store) ListActivityTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM timesheet_activity_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list activity types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan activity type: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// DeleteTimesheetEntry removes one entry by id.
func (s *Store) DeleteTimesheetEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timesheet entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
