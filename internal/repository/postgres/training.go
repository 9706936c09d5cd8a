package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
)

// InsertTrainingSessions appends one batch of sessions. The source system has
// no stable row key, so this is deliberately append-only: re-importing the
// same export inserts new rows under fresh ids.
func (s *Store) InsertTrainingSessions(ctx context.Context, sessions []domain.TrainingSession) error {
	if len(sessions) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO training_sessions (id, topic, title, company, operator, description, duration_minutes, created_at) VALUES `)

	args := make([]interface{}, 0, len(sessions)*8)
	for i, t := range sessions {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 8
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
		args = append(args, t.ID, t.Topic, t.Title, t.Company, t.Operator,
			t.Description, t.DurationMinutes, t.CreatedAt)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert training sessions: %w", err)
	}
	return nil
}

// ListTrainingSessions returns sessions created within [from, to).
func (s *Store) ListTrainingSessions(ctx context.Context, from, to time.Time) ([]domain.TrainingSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, title, company, operator, description, duration_minutes, created_at
		FROM training_sessions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list training sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.TrainingSession
	for rows.Next() {
		var t domain.TrainingSession
		if err := rows.Scan(&t.ID, &t.Topic, &t.Title, &t.Company, &t.Operator,
			&t.Description, &t.DurationMinutes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan training session: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
