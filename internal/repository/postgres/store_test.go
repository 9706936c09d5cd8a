package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/pienissimo/opsdash/internal/domain"
)

func setupMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestUpsertChatEvents(t *testing.T) {
	store, mock := setupMock(t)

	created := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	closed := created.Add(5 * time.Minute)
	events := []domain.ChatEvent{
		{ChatID: "chat-1", Operator: "Nicola", CreatedAt: &created, ClosedAt: &closed, WaitSeconds: 25},
		{ChatID: "chat-2", Operator: "Bot", WaitSeconds: 0},
	}

	mock.ExpectExec(`INSERT INTO chat_events .+ ON CONFLICT \(chat_id\) DO UPDATE`).
		WithArgs("chat-1", "Nicola", created, closed, 25.0, "chat-2", "Bot", nil, nil, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := store.UpsertChatEvents(context.Background(), events); err != nil {
		t.Fatalf("UpsertChatEvents: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertChatEventsDeduplicatesBatch(t *testing.T) {
	store, mock := setupMock(t)

	// Two rows for chat-1 in one batch would make the single INSERT fail
	// with "cannot affect row a second time"; the later row must win.
	events := []domain.ChatEvent{
		{ChatID: "chat-1", Operator: "Nicola", WaitSeconds: 25},
		{ChatID: "chat-2", Operator: "Bot", WaitSeconds: 0},
		{ChatID: "chat-1", Operator: "Mario", WaitSeconds: 40},
	}

	mock.ExpectExec(`INSERT INTO chat_events .+ ON CONFLICT \(chat_id\) DO UPDATE`).
		WithArgs("chat-1", "Mario", nil, nil, 40.0, "chat-2", "Bot", nil, nil, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := store.UpsertChatEvents(context.Background(), events); err != nil {
		t.Fatalf("UpsertChatEvents: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertChatEventsEmptyBatch(t *testing.T) {
	store, mock := setupMock(t)
	// No SQL expected.
	if err := store.UpsertChatEvents(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertTrainingSessions(t *testing.T) {
	store, mock := setupMock(t)

	s := domain.TrainingSession{
		ID:              uuid.New(),
		Topic:           "Centralino / Voice Pro",
		Title:           "Formazione Voice Pro",
		Company:         "Acme SRL",
		Operator:        "Nicola",
		Description:     "setup centralino",
		DurationMinutes: 60,
		CreatedAt:       time.Date(2025, 1, 5, 14, 30, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO training_sessions`).
		WithArgs(s.ID, s.Topic, s.Title, s.Company, s.Operator, s.Description, s.DurationMinutes, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.InsertTrainingSessions(context.Background(), []domain.TrainingSession{s}); err != nil {
		t.Fatalf("InsertTrainingSessions: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertTicketSnapshots(t *testing.T) {
	store, mock := setupMock(t)

	snap := domain.TicketSnapshot{
		Date: "2025-11-03", NewTickets: 12, WaitingTickets: 3, ClosedTickets: 10,
		Backlog: 44, SatisfactionGood: 5, SatisfactionOK: 2, SatisfactionBad: 1,
		SLAFirstResponseMins: 45, SLAResponseMins: 90, SLAResolutionMins: 720,
	}

	mock.ExpectExec(`INSERT INTO ticket_snapshots_support .+ ON CONFLICT \(snapshot_date\) DO UPDATE`).
		WithArgs("2025-11-03", 12, 3, 10, 44, 5, 2, 1, 45, 90, 720).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertTicketSnapshots(context.Background(), domain.DeptSupport, []domain.TicketSnapshot{snap})
	if err != nil {
		t.Fatalf("UpsertTicketSnapshots: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertTicketSnapshotsDeduplicatesBatch(t *testing.T) {
	store, mock := setupMock(t)

	snaps := []domain.TicketSnapshot{
		{Date: "2025-11-03", NewTickets: 12},
		{Date: "2025-11-03", NewTickets: 15},
		{Date: "2025-11-04", NewTickets: 8},
	}

	mock.ExpectExec(`INSERT INTO ticket_snapshots_support .+ ON CONFLICT \(snapshot_date\) DO UPDATE`).
		WithArgs("2025-11-03", 15, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			"2025-11-04", 8, 0, 0, 0, 0, 0, 0, 0, 0, 0).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := store.UpsertTicketSnapshots(context.Background(), domain.DeptSupport, snaps)
	if err != nil {
		t.Fatalf("UpsertTicketSnapshots: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertTicketSnapshotsUnknownDepartment(t *testing.T) {
	store, _ := setupMock(t)
	err := store.UpsertTicketSnapshots(context.Background(), "marketing", []domain.TicketSnapshot{{Date: "2025-11-03"}})
	if err == nil {
		t.Fatal("unknown department accepted")
	}
}

func TestListTicketSnapshots(t *testing.T) {
	store, mock := setupMock(t)

	rows := sqlmock.NewRows([]string{
		"to_char", "new_tickets", "waiting_tickets", "closed_tickets", "backlog",
		"satisfaction_good", "satisfaction_ok", "satisfaction_bad",
		"sla_first_response_mins", "sla_response_mins", "sla_resolution_mins",
	}).
		AddRow("2025-11-03", 12, 3, 10, 44, 5, 2, 1, 45, 90, 720).
		AddRow("2025-11-04", 8, 2, 9, 43, 4, 1, 0, 70, 120, 630)

	mock.ExpectQuery(`FROM ticket_snapshots_development`).
		WithArgs("2025-11-01", "2025-11-30").
		WillReturnRows(rows)

	snaps, err := store.ListTicketSnapshots(context.Background(), domain.DeptDevelopment, "2025-11-01", "2025-11-30")
	if err != nil {
		t.Fatalf("ListTicketSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots", len(snaps))
	}
	if snaps[0].Date != "2025-11-03" || snaps[0].Backlog != 44 {
		t.Errorf("first snapshot = %+v", snaps[0])
	}
}

func TestListChatEvents(t *testing.T) {
	store, mock := setupMock(t)

	created := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"chat_id", "operator", "created_at", "closed_at", "wait_seconds"}).
		AddRow("chat-1", "Nicola", created, created.Add(time.Minute), 25.0).
		AddRow("chat-2", "Bot", created, nil, 0.0)

	mock.ExpectQuery(`FROM chat_events`).
		WithArgs(created, created.Add(24*time.Hour)).
		WillReturnRows(rows)

	events, err := store.ListChatEvents(context.Background(), created, created.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListChatEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	if events[1].ClosedAt != nil {
		t.Errorf("nil close time scanned as %v", events[1].ClosedAt)
	}
}

func TestTimesheetLifecycle(t *testing.T) {
	store, mock := setupMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO timesheet_entries`).
		WithArgs("2025-11-03", "09:00", "11:30", 2.5, "assistenza", "call con cliente").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	e := &domain.TimesheetEntry{
		Date: "2025-11-03", StartTime: "09:00", EndTime: "11:30",
		Hours: 2.5, ActivityType: "assistenza", Notes: "call con cliente",
	}
	if err := store.InsertTimesheetEntry(context.Background(), e); err != nil {
		t.Fatalf("InsertTimesheetEntry: %v", err)
	}
	if e.ID != 7 {
		t.Errorf("id = %d, want 7", e.ID)
	}

	mock.ExpectExec(`DELETE FROM timesheet_entries`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.DeleteTimesheetEntry(context.Background(), 7); err != nil {
		t.Fatalf("DeleteTimesheetEntry: %v", err)
	}

	mock.ExpectExec(`DELETE FROM timesheet_entries`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.DeleteTimesheetEntry(context.Background(), 8); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing entry: err = %v, want ErrNotFound", err)
	}
}

func TestMigrateRunsAllStatements(t *testing.T) {
	store, mock := setupMock(t)

	for range migrations {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
