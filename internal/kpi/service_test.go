package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
)

type fakeReader struct {
	chats    map[string][]domain.ChatEvent // keyed by from date
	sessions []domain.TrainingSession
	support  []domain.TicketSnapshot
	dev      []domain.TicketSnapshot
	entries  []domain.TimesheetEntry
}

func (f *fakeReader) ListChatEvents(_ context.Context, from, _ time.Time) ([]domain.ChatEvent, error) {
	return f.chats[from.Format("2006-01-02")], nil
}

func (f *fakeReader) ListTrainingSessions(_ context.Context, from, _ time.Time) ([]domain.TrainingSession, error) {
	if from.Format("2006-01") != "2025-11" {
		return nil, nil
	}
	return f.sessions, nil
}

func (f *fakeReader) ListTicketSnapshots(_ context.Context, dept domain.Department, from, _ string) ([]domain.TicketSnapshot, error) {
	if from[:7] != "2025-11" {
		return nil, nil
	}
	if dept == domain.DeptSupport {
		return f.support, nil
	}
	return f.dev, nil
}

func (f *fakeReader) ListTimesheetEntries(_ context.Context, _, _ string) ([]domain.TimesheetEntry, error) {
	return f.entries, nil
}

func ts(day, hour int) *time.Time {
	t := time.Date(2025, 11, day, hour, 15, 0, 0, time.UTC)
	return &t
}

func TestDashboardSnapshot(t *testing.T) {
	reader := &fakeReader{
		chats: map[string][]domain.ChatEvent{
			"2025-11-01": {
				{ChatID: "c1", Operator: "Nicola", CreatedAt: ts(3, 9), ClosedAt: ts(3, 10), WaitSeconds: 20},
				{ChatID: "c2", Operator: "Nicola", CreatedAt: ts(3, 14), ClosedAt: ts(3, 14), WaitSeconds: 40},
				{ChatID: "c3", Operator: "Marta", CreatedAt: ts(4, 9), WaitSeconds: 140},
				{ChatID: "c4", Operator: "Bot", CreatedAt: ts(8, 11)},
			},
			// previous month had 2 chats, so the delta is +100%.
			"2025-10-01": {
				{ChatID: "p1", Operator: "Nicola"},
				{ChatID: "p2", Operator: "Marta"},
			},
		},
		sessions: []domain.TrainingSession{
			{Topic: "Centralino / Voice Pro", Company: "Acme", Operator: "Nicola", DurationMinutes: 60},
			{Topic: "Centralino / Voice Pro", Company: "Acme", Operator: "Marta", DurationMinutes: 30},
			{Topic: "Formazione Generale", Company: "Beta", Operator: "Nicola", DurationMinutes: 45},
		},
		support: []domain.TicketSnapshot{
			{Date: "2025-11-03", NewTickets: 10, ClosedTickets: 8, Backlog: 44, SLAFirstResponseMins: 40, SLAResponseMins: 80, SLAResolutionMins: 700, SatisfactionGood: 5},
			{Date: "2025-11-04", NewTickets: 6, ClosedTickets: 9, Backlog: 41, SLAFirstResponseMins: 60, SLAResponseMins: 100, SLAResolutionMins: 500, SatisfactionGood: 3, SatisfactionBad: 1},
		},
		dev: []domain.TicketSnapshot{
			{Date: "2025-11-03", NewTickets: 2, ClosedTickets: 1, Backlog: 12},
		},
		entries: []domain.TimesheetEntry{
			{Date: "2025-11-03", Hours: 2.5},
			{Date: "2025-11-04", Hours: 4},
		},
	}

	svc := NewService(reader, nil)
	snap, err := svc.Dashboard(context.Background(), TimeframeMonth, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if snap.Chat.Total != 4 || snap.Chat.BotHandled != 1 {
		t.Errorf("chat totals = %d/%d", snap.Chat.Total, snap.Chat.BotHandled)
	}
	// Bot conversations stay off the leaderboard.
	if len(snap.Chat.Leaderboard) != 2 || snap.Chat.Leaderboard[0].Operator != "Nicola" || snap.Chat.Leaderboard[0].Count != 2 {
		t.Errorf("leaderboard = %+v", snap.Chat.Leaderboard)
	}
	if snap.Chat.AvgWaitSeconds != (20.0+40+140)/3 {
		t.Errorf("avg wait = %v", snap.Chat.AvgWaitSeconds)
	}
	// c1 lasted an hour, c2 zero (excluded), c3/c4 have no close time.
	if snap.Chat.AvgDurationSeconds != 3600 {
		t.Errorf("avg duration = %v", snap.Chat.AvgDurationSeconds)
	}
	if snap.Chat.WaitBuckets[0].Count != 1 || snap.Chat.WaitBuckets[1].Count != 1 || snap.Chat.WaitBuckets[5].Count != 1 {
		t.Errorf("wait buckets = %+v", snap.Chat.WaitBuckets)
	}
	// Two chats opened at 09:xx.
	if snap.Chat.HourlyHeatmap[0].Hour != 9 || snap.Chat.HourlyHeatmap[0].Count != 2 {
		t.Errorf("heatmap = %+v", snap.Chat.HourlyHeatmap[0])
	}
	// Nov 3 2025 is a Monday, Nov 8 a Saturday.
	if snap.Chat.WeekdayVolumes[0].Count != 2 || snap.Chat.WeekdayVolumes[5].Count != 1 {
		t.Errorf("weekday volumes = %+v", snap.Chat.WeekdayVolumes)
	}

	if snap.Training.Sessions != 3 || snap.Training.TotalMinutes != 135 {
		t.Errorf("training = %d sessions / %d min", snap.Training.Sessions, snap.Training.TotalMinutes)
	}
	if snap.Training.ByTopic[0].Topic != "Centralino / Voice Pro" || snap.Training.ByTopic[0].Minutes != 90 {
		t.Errorf("by topic = %+v", snap.Training.ByTopic)
	}
	if snap.Training.ByCompany[0].Company != "Acme" {
		t.Errorf("by company = %+v", snap.Training.ByCompany)
	}
	if snap.Training.Leaderboard[0].Operator != "Nicola" || snap.Training.Leaderboard[0].Minutes != 105 {
		t.Errorf("training leaderboard = %+v", snap.Training.Leaderboard)
	}

	if snap.Support.New != 16 || snap.Support.Closed != 17 {
		t.Errorf("support counters = %+v", snap.Support)
	}
	if snap.Support.Backlog != 41 {
		t.Errorf("backlog = %d, want last day's 41", snap.Support.Backlog)
	}
	if snap.Support.AvgSLAFirstResponse != 50 || snap.Support.AvgSLAResolution != 600 {
		t.Errorf("sla averages = %+v", snap.Support)
	}
	if snap.Support.Satisfaction.Good != 8 || snap.Support.Satisfaction.Bad != 1 {
		t.Errorf("satisfaction = %+v", snap.Support.Satisfaction)
	}
	if len(snap.Support.DailyTrend) != 2 || snap.Support.DailyTrend[1].Date != "2025-11-04" {
		t.Errorf("daily trend = %+v", snap.Support.DailyTrend)
	}
	if snap.Development.New != 2 || snap.Development.Backlog != 12 {
		t.Errorf("development = %+v", snap.Development)
	}

	if snap.TimesheetHours != 6.5 {
		t.Errorf("timesheet hours = %v", snap.TimesheetHours)
	}

	if snap.Deltas.ChatTotalPct == nil || *snap.Deltas.ChatTotalPct != 100 {
		t.Errorf("chat delta = %v", snap.Deltas.ChatTotalPct)
	}
	// No training data last month: delta stays nil rather than inventing one.
	if snap.Deltas.TrainingMinutesPct != nil {
		t.Errorf("training delta = %v", *snap.Deltas.TrainingMinutesPct)
	}
}

func TestDashboardEmptyPeriod(t *testing.T) {
	svc := NewService(&fakeReader{}, nil)
	snap, err := svc.Dashboard(context.Background(), TimeframeWeek, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if snap.Chat.Total != 0 || snap.Chat.AvgWaitSeconds != 0 {
		t.Errorf("empty chat stats = %+v", snap.Chat)
	}
	if len(snap.Chat.WaitBuckets) != 6 {
		t.Errorf("bucket labels missing on empty period: %+v", snap.Chat.WaitBuckets)
	}
	if snap.Deltas.ChatTotalPct != nil {
		t.Errorf("delta over empty previous period = %v", *snap.Deltas.ChatTotalPct)
	}
}
