package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
)

// UpsertChatEvents writes one batch of conversations. The chat id is the
// conflict key, so re-importing an overlapping export overwrites rows in
// place instead of duplicating them.
func (s *Store) UpsertChatEvents(ctx context.Context, events []domain.ChatEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Postgres rejects an ON CONFLICT update touching the same row twice in
	// one statement, and real exports do repeat ids. Last occurrence wins.
	seen := make(map[string]int, len(events))
	deduped := make([]domain.ChatEvent, 0, len(events))
	for _, e := range events {
		if idx, ok := seen[e.ChatID]; ok {
			deduped[idx] = e
			continue
		}
		seen[e.ChatID] = len(deduped)
		deduped = append(deduped, e)
	}
	events = deduped

	var sb strings.Builder
	sb.WriteString(`INSERT INTO chat_events (chat_id, operator, created_at, closed_at, wait_seconds) VALUES `)

	args := make([]interface{}, 0, len(events)*5)
	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, e.ChatID, e.Operator, e.CreatedAt, e.ClosedAt, e.WaitSeconds)
	}

	sb.WriteString(` ON CONFLICT (chat_id) DO UPDATE SET
		operator = EXCLUDED.operator,
		created_at = EXCLUDED.created_at,
		closed_at = EXCLUDED.closed_at,
		wait_seconds = EXCLUDED.wait_seconds,
		imported_at = NOW()`)

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert chat events: %w", err)
	}
	return nil
}

// ListChatEvents returns conversations created within [from, to).
func (s *Store) ListChatEvents(ctx context.Context, from, to time.Time) ([]domain.ChatEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, operator, created_at, closed_at, wait_seconds
		FROM chat_events
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list chat events: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatEvent
	for rows.Next() {
		var e domain.ChatEvent
		if err := rows.Scan(&e.ChatID, &e.Operator, &e.CreatedAt, &e.ClosedAt, &e.WaitSeconds); err != nil {
			return nil, fmt.Errorf("scan chat event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
