package ingest

import (
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
)

// SkipReason classifies why a data row was dropped. Skips are not errors:
// they are counted so tests and operators can see what an import discarded.
type SkipReason string

const (
	SkipShortRow        SkipReason = "short_row"        // fewer cells than any plausible data row
	SkipMissingIdentity SkipReason = "missing_identity" // no chat id / title+company / date
	SkipSystemRow       SkipReason = "system_row"       // aggregate, footer or admin marker row
)

// RowStats is the per-row three-outcome accounting for one import.
type RowStats struct {
	Accepted int
	Skipped  map[SkipReason]int
}

func newRowStats() *RowStats {
	return &RowStats{Skipped: make(map[SkipReason]int)}
}

func (s *RowStats) skip(r SkipReason) { s.Skipped[r]++ }

// SkippedTotal sums skips across all reasons.
func (s *RowStats) SkippedTotal() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// Result is the outcome of one completed import invocation.
type Result struct {
	Type       domain.ImportType
	Department domain.Department
	TotalRows  int
	Accepted   int
	Skipped    map[SkipReason]int
	Range      *ReportRange
	Elapsed    time.Duration
}
