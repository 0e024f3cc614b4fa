package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"levitt_bridge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

const insertEventSQL = `
		INSERT INTO command_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`

func TestAppend_FillsDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	// Generated id and timestamp are opaque; match argument count and the
	// normalized type.
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "AC_COMMAND", "house AC on", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := models.CommandEvent{Type: " ac_command ", Description: "house AC on"}
	if err := repo.Append(testCtx(t), e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppend_MarshalsMetadata(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs("ev1", sqlmock.AnyArg(), "BLINDS_COMMAND", "blinds down", `{"command":"DOWN","ok":true}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := models.CommandEvent{
		EventID:     "ev1",
		OccurredAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Type:        "BLINDS_COMMAND",
		Description: "blinds down",
		Metadata:    map[string]any{"command": "DOWN", "ok": true},
	}
	if err := repo.Append(testCtx(t), e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppend_PropagatesExecError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WillReturnError(errors.New("disk full"))

	if err := repo.Append(testCtx(t), models.CommandEvent{Type: "LOGIN", Description: "x"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestList_FiltersAndScan(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	occurred := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev1", occurred, "LOGIN", "gateway login", sql.NullString{}).
		AddRow("ev2", occurred.Add(time.Minute), "AC_COMMAND", "house AC on", sql.NullString{String: `{"ok":true}`, Valid: true})

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, occurred_at, type, message, meta FROM command_events WHERE occurred_at >= ? AND type = ? ORDER BY occurred_at ASC`,
	)).WillReturnRows(rows)

	out, err := repo.List(testCtx(t), occurred.Add(-time.Hour), time.Time{}, "ac_command")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}
	if out[0].EventID != "ev1" || out[0].Metadata != nil {
		t.Fatalf("unexpected first event: %+v", out[0])
	}
	meta, ok := out[1].Metadata.(map[string]any)
	if !ok || meta["ok"] != true {
		t.Fatalf("metadata not decoded: %+v", out[1].Metadata)
	}
}

func TestList_KeepsRawMalformedMetadata(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev1", time.Now(), "LOGOUT", "bye", sql.NullString{String: "{not json", Valid: true})

	mock.ExpectQuery("SELECT id, occurred_at, type, message, meta FROM command_events").
		WillReturnRows(rows)

	out, err := repo.List(testCtx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out[0].Metadata != "{not json" {
		t.Fatalf("malformed metadata not kept raw: %+v", out[0].Metadata)
	}
}
