package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/pienissimo/opsdash/internal/domain"
)

// Store is the persistence surface the importer submits batches to.
type Store interface {
	UpsertChatEvents(ctx context.Context, events []domain.ChatEvent) error
	InsertTrainingSessions(ctx context.Context, sessions []domain.TrainingSession) error
	UpsertTicketSnapshots(ctx context.Context, dept domain.Department, snaps []domain.TicketSnapshot) error
}

// Batch sizes per import type. Chat history exports run to tens of thousands
// of rows; the others stay small enough that a smaller batch keeps statement
// sizes comfortable.
const (
	chatBatchSize    = 1000
	defaultBatchSize = 500
)

// Importer turns a raw upload into persisted records. Stateless between
// invocations; safe for concurrent use.
type Importer struct {
	store Store
	now   func() time.Time
}

func NewImporter(store Store) *Importer {
	return &Importer{store: store, now: time.Now}
}

// Import runs the full pipeline for one uploaded buffer: format detection,
// signature checks, header discovery, row extraction, normalization and
// batched submission. dept is only consulted for ticket imports.
//
// Batches are submitted sequentially and there is no cross-batch rollback:
// a mid-import storage failure leaves earlier batches persisted, which the
// per-record upsert keys make safe to retry.
func (imp *Importer) Import(ctx context.Context, buf []byte, typ domain.ImportType, dept domain.Department) (*Result, error) {
	started := imp.now()

	src, err := NewRowSource(buf)
	if err != nil {
		return nil, err
	}

	// Signature checks and the report range only apply to text uploads;
	// a workbook has no banner text to inspect.
	var text string
	if ds, ok := src.(*DelimitedSource); ok {
		text = ds.Text()
	}

	res := &Result{Type: typ, Department: dept}
	stats := newRowStats()

	switch typ {
	case domain.ImportChat:
		if text != "" {
			if err := rejectChatAggregate(text); err != nil {
				return nil, err
			}
			res.Range = FindReportRange(text)
		}
		err = imp.importChat(ctx, src, stats)

	case domain.ImportTraining:
		err = imp.importTraining(ctx, src, stats)

	case domain.ImportTickets:
		if !dept.Valid() {
			return nil, fmt.Errorf("ticket import requires a department, got %q", dept)
		}
		if text != "" {
			if err := rejectNonOverview(text); err != nil {
				return nil, err
			}
		}
		err = imp.importTickets(ctx, src, dept, stats)

	default:
		return nil, fmt.Errorf("unknown import type %q", typ)
	}
	if err != nil {
		return nil, err
	}

	res.Accepted = stats.Accepted
	res.Skipped = stats.Skipped
	res.TotalRows = stats.Accepted + stats.SkippedTotal()
	res.Elapsed = imp.now().Sub(started)
	return res, nil
}

func (imp *Importer) importChat(ctx context.Context, src RowSource, stats *RowStats) error {
	rows, err := src.Rows()
	if err != nil {
		return err
	}
	headerIdx := LocateHeader(rows, chatHeaderSpec)
	if headerIdx < 0 {
		return ErrHeaderNotFound
	}

	events := parseChatHistory(rows, headerIdx, stats)
	if len(events) == 0 {
		return ErrNoValidRows
	}

	for i := 0; i < len(events); i += chatBatchSize {
		end := min(i+chatBatchSize, len(events))
		if err := imp.store.UpsertChatEvents(ctx, events[i:end]); err != nil {
			return fmt.Errorf("chat batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (imp *Importer) importTraining(ctx context.Context, src RowSource, stats *RowStats) error {
	rows, err := src.Rows()
	if err != nil {
		return err
	}
	headerIdx := LocateHeader(rows, trainingHeaderSpec)
	if headerIdx < 0 {
		return ErrHeaderNotFound
	}

	sessions := parseTrainingNotes(rows, headerIdx, stats, imp.now())
	if len(sessions) == 0 {
		return ErrNoValidRows
	}

	for i := 0; i < len(sessions); i += defaultBatchSize {
		end := min(i+defaultBatchSize, len(sessions))
		if err := imp.store.InsertTrainingSessions(ctx, sessions[i:end]); err != nil {
			return fmt.Errorf("training batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (imp *Importer) importTickets(ctx context.Context, src RowSource, dept domain.Department, stats *RowStats) error {
	rows, err := src.Rows()
	if err != nil {
		return err
	}
	headerIdx := LocateHeader(rows, ticketHeaderSpec)
	if headerIdx < 0 {
		return ErrHeaderNotFound
	}

	snaps := parseTicketOverview(rows, headerIdx, stats)
	if len(snaps) == 0 {
		return ErrNoValidRows
	}

	for i := 0; i < len(snaps); i += defaultBatchSize {
		end := min(i+defaultBatchSize, len(snaps))
		if err := imp.store.UpsertTicketSnapshots(ctx, dept, snaps[i:end]); err != nil {
			return fmt.Errorf("ticket batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
