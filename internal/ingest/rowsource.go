package ingest

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is the detected container format of an uploaded buffer.
type Format int

const (
	FormatDelimited Format = iota // plain delimited text
	FormatZip                     // .xlsx (ZIP container)
	FormatOLE                     // legacy .xls (compound document)
)

// SniffFormat classifies a buffer by its first two bytes.
func SniffFormat(buf []byte) Format {
	if len(buf) >= 2 {
		if buf[0] == 0x50 && buf[1] == 0x4B {
			return FormatZip
		}
		if buf[0] == 0xD0 && buf[1] == 0xCF {
			return FormatOLE
		}
	}
	return FormatDelimited
}

// RowSource yields a rectangular-ish sequence of text-cell rows from a raw
// buffer. Implementations are pure: no side effects, no retained state.
type RowSource interface {
	Rows() ([][]string, error)
}

// NewRowSource selects a RowSource by byte signature. Legacy .xls compound
// documents are recognized but not decoded.
func NewRowSource(buf []byte) (RowSource, error) {
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, ErrEmptyFile
	}
	switch SniffFormat(buf) {
	case FormatZip:
		return &SpreadsheetSource{buf: buf}, nil
	case FormatOLE:
		return nil, ErrLegacyWorkbook
	default:
		return &DelimitedSource{text: string(buf)}, nil
	}
}

// DelimitedSource tokenizes delimited text with full CSV quoting semantics.
type DelimitedSource struct {
	text string
}

// Text returns the raw decoded text, used for banner signature checks and
// report-range extraction before any row parsing happens.
func (s *DelimitedSource) Text() string { return s.text }

// Rows tokenizes the buffer. A quoted field may contain commas, newlines and
// doubled-quote escapes; unquoted fields end on a comma or any of \n, \r\n,
// bare \r. Completely blank lines are dropped so a stray newline between the
// header and the data does not become a phantom one-cell row. Every cell is
// trimmed.
func (s *DelimitedSource) Rows() ([][]string, error) {
	text := strings.TrimPrefix(s.text, "\uFEFF")

	var rows [][]string
	var row []string
	var cell strings.Builder
	inQuotes := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		if inQuotes {
			switch {
			case ch == '"' && next == '"':
				cell.WriteByte('"')
				i++
			case ch == '"':
				inQuotes = false
			default:
				cell.WriteByte(ch)
			}
			continue
		}

		switch {
		case ch == '"':
			inQuotes = true
		case ch == ',':
			row = append(row, strings.TrimSpace(cell.String()))
			cell.Reset()
		case ch == '\n' || ch == '\r':
			if ch == '\r' && next == '\n' {
				i++
			}
			row = append(row, strings.TrimSpace(cell.String()))
			cell.Reset()
			if len(row) > 1 || row[0] != "" {
				rows = append(rows, row)
			}
			row = nil
		default:
			cell.WriteByte(ch)
		}
	}

	if len(row) > 0 || cell.Len() > 0 {
		row = append(row, strings.TrimSpace(cell.String()))
		rows = append(rows, row)
	}

	return rows, nil
}

// SpreadsheetSource decodes a ZIP-based workbook, first sheet only, into the
// same row shape as DelimitedSource. Missing cells come back as "".
type SpreadsheetSource struct {
	buf []byte
}

func (s *SpreadsheetSource) Rows() ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(s.buf))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// The reader drops trailing empty cells, so a data row whose tail
	// columns are blank comes back narrower than its header. Pad every row
	// to the sheet's widest row so both sources yield the same shape.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for j, c := range row {
			row[j] = strings.TrimSpace(c)
		}
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}

// ReportRange is a reporting period found embedded in banner text above the
// table, e.g. "Nov 1, 2025 - Nov 30, 2025".
type ReportRange struct {
	Start time.Time
	End   time.Time
}

var reportRangeRe = regexp.MustCompile(`([A-Z][a-z]{2} \d{1,2}, \d{4}).*?-.*?([A-Z][a-z]{2} \d{1,2}, \d{4})`)

// FindReportRange extracts an English-locale date range from banner text.
// Returns nil when no range is present or it does not parse.
func FindReportRange(text string) *ReportRange {
	m := reportRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start, err1 := time.Parse("Jan 2, 2006", m[1])
	end, err2 := time.Parse("Jan 2, 2006", m[2])
	if err1 != nil || err2 != nil {
		return nil
	}
	return &ReportRange{Start: start, End: end}
}
