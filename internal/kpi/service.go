package kpi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
	"github.com/pienissimo/opsdash/internal/ingest"
)

// Reader is the slice of the store the KPI layer needs.
type Reader interface {
	ListChatEvents(ctx context.Context, from, to time.Time) ([]domain.ChatEvent, error)
	ListTrainingSessions(ctx context.Context, from, to time.Time) ([]domain.TrainingSession, error)
	ListTicketSnapshots(ctx context.Context, dept domain.Department, from, to string) ([]domain.TicketSnapshot, error)
	ListTimesheetEntries(ctx context.Context, from, to string) ([]domain.TimesheetEntry, error)
}

// Service computes dashboard snapshots, optionally through a cache.
type Service struct {
	store Reader
	cache *Cache
	now   func() time.Time
}

// NewService builds a KPI service. cache may be nil.
func NewService(store Reader, cache *Cache) *Service {
	return &Service{store: store, cache: cache, now: time.Now}
}

// Dashboard resolves the period containing anchor and returns its snapshot,
// serving from cache when possible.
func (s *Service) Dashboard(ctx context.Context, tf Timeframe, anchor time.Time) (*Snapshot, error) {
	period, err := ResolvePeriod(tf, anchor)
	if err != nil {
		return nil, err
	}

	key := cacheKey(period)
	if s.cache != nil {
		if snap, ok := s.cache.Get(ctx, key); ok {
			return snap, nil
		}
	}

	snap, err := s.compute(ctx, period)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, snap)
	}
	return snap, nil
}

// Invalidate drops all cached snapshots. Called after every import and sync.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
}

func (s *Service) compute(ctx context.Context, period Period) (*Snapshot, error) {
	snap := &Snapshot{Period: period, GeneratedAt: s.now().UTC()}

	chats, err := s.store.ListChatEvents(ctx, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("chat events: %w", err)
	}
	snap.Chat = computeChatStats(chats)

	sessions, err := s.store.ListTrainingSessions(ctx, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("training sessions: %w", err)
	}
	snap.Training = computeTrainingStats(sessions)

	from, to := period.DateRange()
	for _, dept := range []domain.Department{domain.DeptSupport, domain.DeptDevelopment} {
		snaps, err := s.store.ListTicketSnapshots(ctx, dept, from, to)
		if err != nil {
			return nil, fmt.Errorf("%s snapshots: %w", dept, err)
		}
		stats := computeTicketStats(snaps)
		if dept == domain.DeptSupport {
			snap.Support = stats
		} else {
			snap.Development = stats
		}
	}

	entries, err := s.store.ListTimesheetEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("timesheet entries: %w", err)
	}
	for _, e := range entries {
		snap.TimesheetHours += e.Hours
	}

	if err := s.computeDeltas(ctx, period, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// computeDeltas fills percent changes against the previous period. Previous-
// period reads failing is not fatal to the dashboard; deltas just stay nil.
func (s *Service) computeDeltas(ctx context.Context, period Period, snap *Snapshot) error {
	prev := period.Previous()

	prevChats, err := s.store.ListChatEvents(ctx, prev.Start, prev.End)
	if err != nil {
		return nil
	}
	snap.Deltas.ChatTotalPct = pctChange(len(prevChats), snap.Chat.Total)

	prevSessions, err := s.store.ListTrainingSessions(ctx, prev.Start, prev.End)
	if err != nil {
		return nil
	}
	prevMinutes := 0
	for _, t := range prevSessions {
		prevMinutes += t.DurationMinutes
	}
	snap.Deltas.TrainingMinutesPct = pctChange(prevMinutes, snap.Training.TotalMinutes)

	from, to := prev.DateRange()
	if prevSupport, err := s.store.ListTicketSnapshots(ctx, domain.DeptSupport, from, to); err == nil {
		snap.Deltas.SupportNewPct = pctChange(sumNew(prevSupport), snap.Support.New)
	}
	if prevDev, err := s.store.ListTicketSnapshots(ctx, domain.DeptDevelopment, from, to); err == nil {
		snap.Deltas.DevelopmentNewPct = pctChange(sumNew(prevDev), snap.Development.New)
	}
	return nil
}

func sumNew(snaps []domain.TicketSnapshot) int {
	n := 0
	for _, t := range snaps {
		n += t.NewTickets
	}
	return n
}

func pctChange(prev, cur int) *float64 {
	if prev == 0 {
		return nil
	}
	pct := (float64(cur) - float64(prev)) / float64(prev) * 100
	return &pct
}

var weekdayLabels = [...]string{"Lun", "Mar", "Mer", "Gio", "Ven", "Sab", "Dom"}

// Working-hour bounds for the heatmap.
const (
	heatmapFirstHour = 9
	heatmapLastHour  = 19
)

func computeChatStats(events []domain.ChatEvent) ChatStats {
	stats := ChatStats{}

	byOperator := map[string]int{}
	buckets := map[string]int{}
	hours := make([]int, heatmapLastHour-heatmapFirstHour+1)
	weekdays := make([]int, 7)

	var waitSum, durationSum float64
	var waitN, durationN int

	for _, e := range events {
		stats.Total++
		if e.Operator == "Bot" {
			stats.BotHandled++
		} else {
			byOperator[e.Operator]++
		}

		if e.WaitSeconds > 0 {
			waitSum += e.WaitSeconds
			waitN++
			buckets[ingest.WaitBucket(e.WaitSeconds)]++
		}
		if d := e.Duration(); d > 0 {
			durationSum += d
			durationN++
		}

		if e.CreatedAt != nil {
			h := e.CreatedAt.Hour()
			if h >= heatmapFirstHour && h <= heatmapLastHour {
				hours[h-heatmapFirstHour]++
			}
			weekdays[(int(e.CreatedAt.Weekday())+6)%7]++
		}
	}

	if waitN > 0 {
		stats.AvgWaitSeconds = waitSum / float64(waitN)
	}
	if durationN > 0 {
		stats.AvgDurationSeconds = durationSum / float64(durationN)
	}

	stats.Leaderboard = rankCounts(byOperator)

	for _, label := range ingest.WaitBucketLabels {
		stats.WaitBuckets = append(stats.WaitBuckets, BucketCount{Label: label, Count: buckets[label]})
	}
	for i, n := range hours {
		stats.HourlyHeatmap = append(stats.HourlyHeatmap, HourCount{Hour: heatmapFirstHour + i, Count: n})
	}
	for i, n := range weekdays {
		stats.WeekdayVolumes = append(stats.WeekdayVolumes, WeekdayCount{Weekday: weekdayLabels[i], Count: n})
	}
	return stats
}

// topCompanies bounds the company breakdown; the long tail is noise on a
// dashboard card.
const topCompanies = 10

func computeTrainingStats(sessions []domain.TrainingSession) TrainingStats {
	stats := TrainingStats{}

	type agg struct{ sessions, minutes int }
	byTopic := map[string]*agg{}
	byCompany := map[string]*agg{}
	minutesByOperator := map[string]float64{}

	for _, t := range sessions {
		stats.Sessions++
		stats.TotalMinutes += t.DurationMinutes

		if byTopic[t.Topic] == nil {
			byTopic[t.Topic] = &agg{}
		}
		byTopic[t.Topic].sessions++
		byTopic[t.Topic].minutes += t.DurationMinutes

		if t.Company != "" {
			if byCompany[t.Company] == nil {
				byCompany[t.Company] = &agg{}
			}
			byCompany[t.Company].sessions++
			byCompany[t.Company].minutes += t.DurationMinutes
		}

		if t.Operator != "" {
			minutesByOperator[t.Operator] += float64(t.DurationMinutes)
		}
	}

	// Topic rows follow the classifier's cascade order so the dashboard
	// card is stable across periods.
	for _, topic := range ingest.Topics() {
		if a, ok := byTopic[topic]; ok {
			stats.ByTopic = append(stats.ByTopic, TopicStats{Topic: topic, Sessions: a.sessions, Minutes: a.minutes})
		}
	}

	for company, a := range byCompany {
		stats.ByCompany = append(stats.ByCompany, CompanyStats{Company: company, Sessions: a.sessions, Minutes: a.minutes})
	}
	sort.Slice(stats.ByCompany, func(i, j int) bool {
		if stats.ByCompany[i].Minutes != stats.ByCompany[j].Minutes {
			return stats.ByCompany[i].Minutes > stats.ByCompany[j].Minutes
		}
		return stats.ByCompany[i].Company < stats.ByCompany[j].Company
	})
	if len(stats.ByCompany) > topCompanies {
		stats.ByCompany = stats.ByCompany[:topCompanies]
	}

	for operator, minutes := range minutesByOperator {
		stats.Leaderboard = append(stats.Leaderboard, OperatorCount{Operator: operator, Minutes: minutes})
	}
	sort.Slice(stats.Leaderboard, func(i, j int) bool {
		if stats.Leaderboard[i].Minutes != stats.Leaderboard[j].Minutes {
			return stats.Leaderboard[i].Minutes > stats.Leaderboard[j].Minutes
		}
		return stats.Leaderboard[i].Operator < stats.Leaderboard[j].Operator
	})
	return stats
}

func computeTicketStats(snaps []domain.TicketSnapshot) TicketStats {
	stats := TicketStats{}

	var slaFirst, slaResp, slaRes, slaN int
	for _, t := range snaps {
		stats.New += t.NewTickets
		stats.Closed += t.ClosedTickets
		stats.Backlog = t.Backlog // rows are date-ordered; last one wins
		stats.Satisfaction.Good += t.SatisfactionGood
		stats.Satisfaction.OK += t.SatisfactionOK
		stats.Satisfaction.Bad += t.SatisfactionBad

		if t.SLAFirstResponseMins > 0 || t.SLAResponseMins > 0 || t.SLAResolutionMins > 0 {
			slaFirst += t.SLAFirstResponseMins
			slaResp += t.SLAResponseMins
			slaRes += t.SLAResolutionMins
			slaN++
		}

		stats.DailyTrend = append(stats.DailyTrend, DayPoint{
			Date: t.Date, New: t.NewTickets, Closed: t.ClosedTickets, Backlog: t.Backlog,
		})
	}

	if slaN > 0 {
		stats.AvgSLAFirstResponse = float64(slaFirst) / float64(slaN)
		stats.AvgSLAResponse = float64(slaResp) / float64(slaN)
		stats.AvgSLAResolution = float64(slaRes) / float64(slaN)
	}
	return stats
}

func rankCounts(m map[string]int) []OperatorCount {
	out := make([]OperatorCount, 0, len(m))
	for operator, n := range m {
		out = append(out, OperatorCount{Operator: operator, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Operator < out[j].Operator
	})
	return out
}
