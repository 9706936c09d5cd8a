package ingest

import (
	"strings"

	"github.com/pienissimo/opsdash/internal/domain"
)

// ticketOverviewMarkers must both be present for a buffer to qualify as the
// daily overview export. Users routinely upload single-ticket listings here.
var ticketOverviewMarkers = []string{"Tempo prima risposta", "Backlog"}

var ticketHeaderSpec = HeaderSpec{
	Sets: []FragmentSet{
		{"nuovo ticket"},
		{"ticket"},
	},
	Window: defaultHeaderWindow,
}

var ticketFields = map[string]FieldSpec{
	"date":      {Fragments: []string{"data", "date"}, Exact: true},
	"new":       {Fragments: []string{"nuovo ticket", "nuovo", "new"}},
	"waiting":   {Fragments: []string{"in attesa", "waiting"}},
	"closed":    {Fragments: []string{"chiusi", "closed"}},
	"backlog":   {Fragments: []string{"backlog"}},
	"sat_good":  {Fragments: []string{"buono", "good"}},
	"sat_ok":    {Fragments: []string{"ok"}, Exact: true},
	"sat_bad":   {Fragments: []string{"insufficiente", "bad"}},
	"sla_first": {Fragments: []string{"tempo prima risposta", "first response"}},
	"sla_resp":  {Fragments: []string{"tempo di risposta", "response time"}},
	"sla_res":   {Fragments: []string{"risoluzione", "resolution"}},
}

// rejectNonOverview returns a RejectError when the buffer lacks the overview
// markers, i.e. it is some other helpdesk export.
func rejectNonOverview(text string) error {
	for _, marker := range ticketOverviewMarkers {
		if !strings.Contains(text, marker) {
			return &RejectError{
				Detected: "helpdesk export without daily overview columns",
				Guidance: "export the ReportOverview file with the Backlog and SLA columns included",
			}
		}
	}
	return nil
}

// parseTicketOverview extracts one snapshot per calendar day from the daily
// overview table. The date is the identity; rows whose date cell cannot be
// parsed are dropped rather than guessed.
func parseTicketOverview(rows [][]string, headerIdx int, stats *RowStats) []domain.TicketSnapshot {
	cols := ResolveColumns(rows[headerIdx], ticketFields)

	var snaps []domain.TicketSnapshot
	for _, row := range rows[headerIdx+1:] {
		if len(row) < minRowWidth {
			stats.skip(SkipShortRow)
			continue
		}
		rawDate := cols.Cell(row, "date")
		if IsSystemRow(rawDate) {
			stats.skip(SkipSystemRow)
			continue
		}
		date := ParseCellDate(rawDate)
		if date == nil {
			stats.skip(SkipMissingIdentity)
			continue
		}

		snaps = append(snaps, domain.TicketSnapshot{
			Date:                 date.Format("2006-01-02"),
			NewTickets:           atoiCell(cols.Cell(row, "new")),
			WaitingTickets:       atoiCell(cols.Cell(row, "waiting")),
			ClosedTickets:        atoiCell(cols.Cell(row, "closed")),
			Backlog:              atoiCell(cols.Cell(row, "backlog")),
			SatisfactionGood:     atoiCell(cols.Cell(row, "sat_good")),
			SatisfactionOK:       atoiCell(cols.Cell(row, "sat_ok")),
			SatisfactionBad:      atoiCell(cols.Cell(row, "sat_bad")),
			SLAFirstResponseMins: ParseClockMinutes(cols.Cell(row, "sla_first")),
			SLAResponseMins:      ParseClockMinutes(cols.Cell(row, "sla_resp")),
			SLAResolutionMins:    ParseClockMinutes(cols.Cell(row, "sla_res")),
		})
		stats.Accepted++
	}
	return snaps
}
