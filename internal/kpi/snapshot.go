package kpi

import "time"

// OperatorCount is one leaderboard row.
type OperatorCount struct {
	Operator string  `json:"operator"`
	Count    int     `json:"count"`
	Minutes  float64 `json:"minutes,omitempty"`
}

// BucketCount is one wait-time distribution bar.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// HourCount is one working-hour heatmap cell (09:00 through 19:00).
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// WeekdayCount is one weekday volume bar, Monday first.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// TopicStats is one training-topic breakdown row.
type TopicStats struct {
	Topic    string `json:"topic"`
	Sessions int    `json:"sessions"`
	Minutes  int    `json:"minutes"`
}

// CompanyStats is one trained-company breakdown row.
type CompanyStats struct {
	Company  string `json:"company"`
	Sessions int    `json:"sessions"`
	Minutes  int    `json:"minutes"`
}

// DayPoint is one day on the ticket trend chart.
type DayPoint struct {
	Date    string `json:"date"`
	New     int    `json:"new"`
	Closed  int    `json:"closed"`
	Backlog int    `json:"backlog"`
}

// ChatStats aggregates the chat events of one period.
type ChatStats struct {
	Total              int            `json:"total"`
	BotHandled         int            `json:"bot_handled"`
	AvgWaitSeconds     float64        `json:"avg_wait_seconds"`
	AvgDurationSeconds float64        `json:"avg_duration_seconds"`
	Leaderboard        []OperatorCount `json:"leaderboard"`
	WaitBuckets        []BucketCount  `json:"wait_buckets"`
	HourlyHeatmap      []HourCount    `json:"hourly_heatmap"`
	WeekdayVolumes     []WeekdayCount `json:"weekday_volumes"`
}

// TrainingStats aggregates the training sessions of one period.
type TrainingStats struct {
	Sessions     int             `json:"sessions"`
	TotalMinutes int             `json:"total_minutes"`
	ByTopic      []TopicStats    `json:"by_topic"`
	ByCompany    []CompanyStats  `json:"by_company"`
	Leaderboard  []OperatorCount `json:"leaderboard"`
}

// Satisfaction is the period's summed customer feedback counts.
type Satisfaction struct {
	Good int `json:"good"`
	OK   int `json:"ok"`
	Bad  int `json:"bad"`
}

// TicketStats aggregates one department's daily snapshots over a period.
// Counters (new, closed) sum across days; Backlog is the last day's gauge.
type TicketStats struct {
	New                  int          `json:"new"`
	Closed               int          `json:"closed"`
	Backlog              int          `json:"backlog"`
	AvgSLAFirstResponse  float64      `json:"avg_sla_first_response_mins"`
	AvgSLAResponse       float64      `json:"avg_sla_response_mins"`
	AvgSLAResolution     float64      `json:"avg_sla_resolution_mins"`
	Satisfaction         Satisfaction `json:"satisfaction"`
	DailyTrend           []DayPoint   `json:"daily_trend"`
}

// Deltas compares headline numbers against the previous period, in percent.
// A nil field means the previous period had no data to compare against.
type Deltas struct {
	ChatTotalPct       *float64 `json:"chat_total_pct"`
	TrainingMinutesPct *float64 `json:"training_minutes_pct"`
	SupportNewPct      *float64 `json:"support_new_pct"`
	DevelopmentNewPct  *float64 `json:"development_new_pct"`
}

// Snapshot is the full dashboard payload for one period.
type Snapshot struct {
	Period         Period        `json:"period"`
	Chat           ChatStats     `json:"chat"`
	Training       TrainingStats `json:"training"`
	Support        TicketStats   `json:"support"`
	Development    TicketStats   `json:"development"`
	TimesheetHours float64       `json:"timesheet_hours"`
	Deltas         Deltas        `json:"deltas"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
