package ingest

import (
	"strings"

	"github.com/pienissimo/opsdash/internal/domain"
)

// chatAggregateMarkers identify the per-brand aggregate report that users
// regularly upload by mistake instead of the conversation history export.
var chatAggregateMarkers = []string{"Brand Performance", "Chats Owned"}

var chatHeaderSpec = HeaderSpec{
	Sets:   []FragmentSet{{"id della conversazione"}},
	Window: 15,
}

var chatFields = map[string]FieldSpec{
	"chat_id":  {Fragments: []string{"id della conversazione"}},
	"operator": {Fragments: []string{"partecipante"}},
	"created":  {Fragments: []string{"ora di creazione"}},
	"closed":   {Fragments: []string{"ora di fine"}},
	// The platform renamed this column across export versions; both names
	// carry the first-agent response wait in seconds.
	"wait":     {Fragments: []string{"risposta da parte del primo agente"}},
	"wait_alt": {Fragments: []string{"primo tempo di prima risposta"}},
}

// rejectChatAggregate returns a RejectError when the buffer is the aggregate
// summary report rather than the conversation history.
func rejectChatAggregate(text string) error {
	for _, marker := range chatAggregateMarkers {
		if strings.Contains(text, marker) {
			return &RejectError{
				Detected: "aggregate chat summary report",
				Guidance: "export the conversation history file from the Conversations section instead",
			}
		}
	}
	return nil
}

// parseChatHistory extracts chat events from the located table. Rows without
// a conversation identifier are dropped; an empty participant means the bot
// handled the conversation end to end.
func parseChatHistory(rows [][]string, headerIdx int, stats *RowStats) []domain.ChatEvent {
	cols := ResolveColumns(rows[headerIdx], chatFields)

	var events []domain.ChatEvent
	for _, row := range rows[headerIdx+1:] {
		if len(row) < minRowWidth {
			stats.skip(SkipShortRow)
			continue
		}
		chatID := cols.Cell(row, "chat_id")
		if chatID == "" {
			stats.skip(SkipMissingIdentity)
			continue
		}
		if IsSystemRow(chatID) {
			stats.skip(SkipSystemRow)
			continue
		}

		operator := NormalizeOperator(cols.Cell(row, "operator"))
		if operator == "" {
			operator = "Bot"
		}

		wait := floatCell(cols.Cell(row, "wait"))
		if wait == 0 {
			wait = floatCell(cols.Cell(row, "wait_alt"))
		}

		events = append(events, domain.ChatEvent{
			ChatID:      chatID,
			Operator:    operator,
			CreatedAt:   ParseEpochMillis(cols.Cell(row, "created")),
			ClosedAt:    ParseEpochMillis(cols.Cell(row, "closed")),
			WaitSeconds: wait,
		})
		stats.Accepted++
	}
	return events
}
