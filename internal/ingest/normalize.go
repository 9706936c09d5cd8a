package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// operatorAliases maps lowercased full names from the exports to the short
// display name used everywhere in the dashboard. The same person shows up
// as a full name in one export and initials in another; this table is the
// single source of truth for who is who.
var operatorAliases = map[string]string{
	"nicola pellicioni": "Nicola",
	"emanuele rosti":    "Emanuele",
	"filippo rossi":     "Filippo",
	"marta f":           "Marta",
	"nouha m":           "Nouha",
	"giuseppe u":        "Giuseppe",
}

// NormalizeOperator maps a raw operator cell to its canonical display name.
// Alias table first; otherwise the first whitespace-delimited token,
// title-cased. Total: every non-empty input yields a non-empty name, and the
// same person normalizes identically regardless of source spelling.
func NormalizeOperator(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}
	if alias, ok := operatorAliases[strings.ToLower(name)]; ok {
		return alias
	}
	first := strings.Fields(name)[0]
	runes := []rune(strings.ToLower(first))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ParseDurationMinutes converts a colon-delimited clock value to total
// minutes: "H:MM:SS" and "H:MM" forms, with an optional " hrs" unit suffix.
// Anything unparsable, including plain numbers without a colon, yields 0.
// Never negative, never an error.
func ParseDurationMinutes(raw string) float64 {
	v := strings.TrimSpace(strings.ReplaceAll(raw, " hrs", ""))
	if v == "" {
		return 0
	}

	parts := strings.Split(v, ":")
	nums := make([]float64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}

	var mins float64
	switch len(nums) {
	case 3:
		mins = nums[0]*60 + nums[1] + nums[2]/60
	case 2:
		mins = nums[0]*60 + nums[1]
	default:
		return 0
	}
	if mins < 0 {
		return 0
	}
	return mins
}

var clockRe = regexp.MustCompile(`(\d+):(\d+)`)

// ParseClockMinutes converts an SLA cell shaped like "H:MM" to total
// minutes. The exports wrap these in stray text now and then, so the first
// digit:digit group anywhere in the cell counts. No match yields 0.
func ParseClockMinutes(raw string) int {
	m := clockRe.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm
}

// serialEpochOffset converts spreadsheet serial dates (days since the 1900
// epoch, with the historical off-by-two correction) to Unix seconds.
const serialEpochOffset = 25569

// ParseSerialDate converts a numeric spreadsheet serial to a UTC time.
func ParseSerialDate(serial float64) time.Time {
	secs := (serial - serialEpochOffset) * 86400
	return time.Unix(int64(secs+0.5), 0).UTC()
}

// ParseEpochMillis parses a cell holding milliseconds since the Unix epoch.
// Empty, non-numeric or non-positive cells yield nil.
func ParseEpochMillis(raw string) *time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// cellDateLayouts are the string shapes the exports actually produce.
var cellDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"02/01/2006",
}

// ParseCellDate converts a raw date cell to a UTC time. A purely numeric
// cell is treated as a spreadsheet serial date; otherwise the known layouts
// are tried in order. A bare 10-character date is anchored at noon so that
// timezone math can never shift it across a day boundary. Failure yields
// nil; the caller drops the row.
func ParseCellDate(raw string) *time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t := ParseSerialDate(serial)
		return &t
	}

	if len(v) == 10 && v[4] == '-' {
		if t, err := time.Parse("2006-01-02T15:04:05", v+"T12:00:00"); err == nil {
			t = t.UTC()
			return &t
		}
	}

	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

var italianMonths = map[string]time.Month{
	"gen": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "mag": time.May, "giu": time.June,
	"lug": time.July, "ago": time.August, "set": time.September,
	"ott": time.October, "nov": time.November, "dic": time.December,
}

var italianDateRe = regexp.MustCompile(`(?i)([a-z]{3})\s+(\d{1,2}),\s+(\d{4})\s+(\d{1,2}):(\d{2})`)

// ParseItalianDateTime parses the helpdesk's creation-timestamp format,
// e.g. "gen 5, 2025 14:30" ("mag", "giu", "lug" and friends for months).
// Returns nil when the cell does not match.
func ParseItalianDateTime(raw string) *time.Time {
	m := italianDateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}
	month, ok := italianMonths[strings.ToLower(m[1])]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

// WaitBucketLabels is the fixed order of first-response wait buckets.
var WaitBucketLabels = []string{
	"< 30 sec", "30 - 45 sec", "45 - 60 sec", "60 - 90 sec", "90 - 120 sec", "> 120 sec",
}

// WaitBucket maps a first-response wait in seconds onto its display bucket.
func WaitBucket(seconds float64) string {
	switch {
	case seconds < 30:
		return WaitBucketLabels[0]
	case seconds <= 45:
		return WaitBucketLabels[1]
	case seconds <= 60:
		return WaitBucketLabels[2]
	case seconds <= 90:
		return WaitBucketLabels[3]
	case seconds <= 120:
		return WaitBucketLabels[4]
	default:
		return WaitBucketLabels[5]
	}
}

// atoiCell parses a count cell, treating anything unparsable as 0 and
// clamping negatives. The exports pad counts with blanks liberally.
func atoiCell(raw string) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil {
			n = int(f)
		} else {
			return 0
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// floatCell parses a numeric cell, 0 on failure, clamped non-negative.
func floatCell(raw string) float64 {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
