package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pienissimo/opsdash/internal/domain"
)

// snapshotTables whitelists the per-department tables. Table names cannot be
// bound as query parameters, so the department never reaches SQL as raw text.
var snapshotTables = map[domain.Department]string{
	domain.DeptSupport:     "ticket_snapshots_support",
	domain.DeptDevelopment: "ticket_snapshots_development",
}

// UpsertTicketSnapshots writes one batch of daily snapshots for a department.
// The calendar day is the conflict key: the latest import of a day wins.
func (s *Store) UpsertTicketSnapshots(ctx context.Context, dept domain.Department, snaps []domain.TicketSnapshot) error {
	table, ok := snapshotTables[dept]
	if !ok {
		return fmt.Errorf("unknown department %q", dept)
	}
	if len(snaps) == 0 {
		return nil
	}

	// Same day twice in one batch would make ON CONFLICT fail the whole
	// statement; keep the last occurrence.
	seen := make(map[string]int, len(snaps))
	deduped := make([]domain.TicketSnapshot, 0, len(snaps))
	for _, t := range snaps {
		if idx, ok := seen[t.Date]; ok {
			deduped[idx] = t
			continue
		}
		seen[t.Date] = len(deduped)
		deduped = append(deduped, t)
	}
	snaps = deduped

	var sb strings.Builder
	fmt.Fprintf(&sb, `INSERT INTO %s (snapshot_date, new_tickets, waiting_tickets, closed_tickets, backlog,
		satisfaction_good, satisfaction_ok, satisfaction_bad,
		sla_first_response_mins, sla_response_mins, sla_resolution_mins) VALUES `, table)

	args := make([]interface{}, 0, len(snaps)*11)
	for i, t := range snaps {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 11
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9, n+10, n+11)
		args = append(args, t.Date, t.NewTickets, t.WaitingTickets, t.ClosedTickets, t.Backlog,
			t.SatisfactionGood, t.SatisfactionOK, t.SatisfactionBad,
			t.SLAFirstResponseMins, t.SLAResponseMins, t.SLAResolutionMins)
	}

	sb.WriteString(` ON CONFLICT (snapshot_date) DO UPDATE SET
		new_tickets = EXCLUDED.new_tickets,
		waiting_tickets = EXCLUDED.waiting_tickets,
		closed_tickets = EXCLUDED.closed_tickets,
		backlog = EXCLUDED.backlog,
		satisfaction_good = EXCLUDED.satisfaction_good,
		satisfaction_ok = EXCLUDED.satisfaction_ok,
		satisfaction_bad = EXCLUDED.satisfaction_bad,
		sla_first_response_mins = EXCLUDED.sla_first_response_mins,
		sla_response_mins = EXCLUDED.sla_response_mins,
		sla_resolution_mins = EXCLUDED.sla_resolution_mins,
		updated_at = NOW()`)

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert ticket snapshots: %w", err)
	}
	return nil
}

// ListTicketSnapshots returns snapshots for [from, to], both YYYY-MM-DD.
func (s *Store) ListTicketSnapshots(ctx context.Context, dept domain.Department, from, to string) ([]domain.TicketSnapshot, error) {
	table, ok := snapshotTables[dept]
	if !ok {
		return nil, fmt.Errorf("unknown department %q", dept)
	}

	q := fmt.Sprintf(`
		SELECT to_char(snapshot_date, 'YYYY-MM-DD'), new_tickets, waiting_tickets, closed_tickets, backlog,
		       satisfaction_good, satisfaction_ok, satisfaction_bad,
		       sla_first_response_mins, sla_response_mins, sla_resolution_mins
		FROM %s
		WHERE snapshot_date >= $1 AND snapshot_date <= $2
		ORDER BY snapshot_date
	`, table)

	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("list ticket snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.TicketSnapshot
	for rows.Next() {
		var t domain.TicketSnapshot
		if err := rows.Scan(&t.Date, &t.NewTickets, &t.WaitingTickets, &t.ClosedTickets, &t.Backlog,
			&t.SatisfactionGood, &t.SatisfactionOK, &t.SatisfactionBad,
			&t.SLAFirstResponseMins, &t.SLAResponseMins, &t.SLAResolutionMins); err != nil {
			return nil, fmt.Errorf("scan ticket snapshot: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
