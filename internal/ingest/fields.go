package ingest

import (
	"regexp"
	"strings"
)

// FieldSpec binds one logical field to the physical header. Fragments are
// tried in order; the first header cell containing (or, with Exact, equal to)
// a fragment wins. Exact matching is for short names like "data" that are
// substrings of unrelated longer columns.
type FieldSpec struct {
	Fragments []string
	Exact     bool
}

// Columns is the resolved mapping of logical field names to column indices.
// Unresolved fields hold -1 and always extract as the empty string.
type Columns map[string]int

// ResolveColumns binds every field in the map against the located header row.
func ResolveColumns(header []string, fields map[string]FieldSpec) Columns {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(Columns, len(fields))
	for name, spec := range fields {
		cols[name] = -1
		for _, frag := range spec.Fragments {
			frag = strings.ToLower(frag)
			idx := -1
			for i, h := range lowered {
				if spec.Exact && h == frag {
					idx = i
					break
				}
				if !spec.Exact && strings.Contains(h, frag) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				cols[name] = idx
				break
			}
		}
	}
	return cols
}

// Cell extracts a field's raw value from a data row. Unresolved fields and
// rows too short to hold the column yield "".
func (c Columns) Cell(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// minRowWidth is the smallest cell count a plausible data row can have.
// Shorter rows are report footers, stray separators, or truncated lines.
const minRowWidth = 5

// systemRowRe matches identity cells of aggregate/summary/admin rows that
// the exports append below the data (grand totals, portal users, generation
// stamps). Those are not operator data.
var systemRowRe = regexp.MustCompile(`(?i)Total|Portal|Generated|Admin`)

// IsSystemRow reports whether a primary identity cell marks a non-data row.
func IsSystemRow(identity string) bool {
	return systemRowRe.MatchString(identity)
}
