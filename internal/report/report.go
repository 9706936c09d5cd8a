// Package report renders the weekly meeting summary from a KPI snapshot.
// The output is plain text meant to be pasted into a chat or an email.
package report

import (
	"fmt"
	"math"

	"github.com/osteele/liquid"

	"github.com/pienissimo/opsdash/internal/kpi"
)

// executiveTemplate is the meeting text. Kept as one template so the wording
// can change without touching aggregation code.
const executiveTemplate = `📊 Report Operativo — {{ period_label }}

💬 Chat: {{ chat_total }} conversazioni ({{ chat_delta }}){% if bot_handled > 0 %}, di cui {{ bot_handled }} gestite dal bot{% endif %}
⏱ Attesa media prima risposta: {{ avg_wait }} sec

🎓 Formazione: {{ training_sessions }} sessioni, {{ training_minutes }} minuti ({{ training_delta }})

🎫 Assistenza: {{ support_new }} nuovi / {{ support_closed }} chiusi — backlog {{ support_backlog }} {{ backlog_arrow }}
🛠 Sviluppo: {{ dev_new }} nuovi / {{ dev_closed }} chiusi — backlog {{ dev_backlog }}

{% if top_operator != "" %}🏆 Top operatore chat: {{ top_operator }} ({{ top_operator_chats }} conversazioni){% endif %}`

// Renderer turns snapshots into executive text.
type Renderer struct {
	engine   *liquid.Engine
	template string
}

// NewRenderer builds a renderer with the default template.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil || fmt.Sprintf("%v", value) == "" {
			return defaultVal
		}
		return value
	})
	return &Renderer{engine: engine, template: executiveTemplate}
}

// Render produces the meeting text for one snapshot.
func (r *Renderer) Render(snap *kpi.Snapshot) (string, error) {
	bindings := map[string]interface{}{
		"period_label":       snap.Period.Label,
		"chat_total":         snap.Chat.Total,
		"bot_handled":        snap.Chat.BotHandled,
		"avg_wait":           int(math.Round(snap.Chat.AvgWaitSeconds)),
		"chat_delta":         formatDelta(snap.Deltas.ChatTotalPct),
		"training_sessions":  snap.Training.Sessions,
		"training_minutes":   snap.Training.TotalMinutes,
		"training_delta":     formatDelta(snap.Deltas.TrainingMinutesPct),
		"support_new":        snap.Support.New,
		"support_closed":     snap.Support.Closed,
		"support_backlog":    snap.Support.Backlog,
		"backlog_arrow":      backlogArrow(snap.Support),
		"dev_new":            snap.Development.New,
		"dev_closed":         snap.Development.Closed,
		"dev_backlog":        snap.Development.Backlog,
		"top_operator":       "",
		"top_operator_chats": 0,
	}
	if len(snap.Chat.Leaderboard) > 0 {
		bindings["top_operator"] = snap.Chat.Leaderboard[0].Operator
		bindings["top_operator_chats"] = snap.Chat.Leaderboard[0].Count
	}

	out, err := r.engine.ParseAndRenderString(r.template, bindings)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}

// formatDelta renders a percent change as "+12%" / "-8%", or "n/d" when the
// previous period has no data.
func formatDelta(pct *float64) string {
	if pct == nil {
		return "n/d"
	}
	rounded := int(math.Round(*pct))
	if rounded >= 0 {
		return fmt.Sprintf("+%d%%", rounded)
	}
	return fmt.Sprintf("%d%%", rounded)
}

// backlogArrow signals whether the period ate into the backlog or grew it.
func backlogArrow(t kpi.TicketStats) string {
	switch {
	case t.Closed > t.New:
		return "↓"
	case t.Closed < t.New:
		return "↑"
	default:
		return "→"
	}
}
