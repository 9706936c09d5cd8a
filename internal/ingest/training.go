package ingest

import (
	"time"

	"github.com/google/uuid"

	"github.com/pienissimo/opsdash/internal/domain"
)

var trainingHeaderSpec = HeaderSpec{
	Sets: []FragmentSet{
		{"durata formazione"},
		{"durata", "creato"},
	},
	Window: defaultHeaderWindow,
}

var trainingFields = map[string]FieldSpec{
	"title":       {Fragments: []string{"nome nota reparto tecnico", "nome nota"}},
	"company":     {Fragments: []string{"azienda"}},
	"operator":    {Fragments: []string{"creato da", "proprietario di nota reparto tecnico"}},
	"description": {Fragments: []string{"descrizione"}},
	"duration":    {Fragments: []string{"durata formazione (in minuti)", "durata"}},
	"created":     {Fragments: []string{"ora creazione", "ora", "data"}},
}

// parseTrainingNotes extracts training sessions from the CRM note export.
// A row needs at least a title or a company to count as a session; everything
// else degrades gracefully. Classification happens here, at ingest time, so
// the stored record already carries its topic.
func parseTrainingNotes(rows [][]string, headerIdx int, stats *RowStats, now time.Time) []domain.TrainingSession {
	cols := ResolveColumns(rows[headerIdx], trainingFields)

	var sessions []domain.TrainingSession
	for _, row := range rows[headerIdx+1:] {
		if len(row) < minRowWidth {
			stats.skip(SkipShortRow)
			continue
		}
		title := cols.Cell(row, "title")
		company := cols.Cell(row, "company")
		if title == "" && company == "" {
			stats.skip(SkipMissingIdentity)
			continue
		}
		if IsSystemRow(title) {
			stats.skip(SkipSystemRow)
			continue
		}

		description := cols.Cell(row, "description")
		createdAt := ParseItalianDateTime(cols.Cell(row, "created"))
		if createdAt == nil {
			createdAt = ParseCellDate(cols.Cell(row, "created"))
		}
		if createdAt == nil {
			t := now
			createdAt = &t
		}

		sessions = append(sessions, domain.TrainingSession{
			ID:              uuid.New(),
			Topic:           ClassifyTopic(title, description),
			Title:           title,
			Company:         company,
			Operator:        NormalizeOperator(cols.Cell(row, "operator")),
			Description:     description,
			DurationMinutes: atoiCell(cols.Cell(row, "duration")),
			CreatedAt:       *createdAt,
		})
		stats.Accepted++
	}
	return sessions
}
