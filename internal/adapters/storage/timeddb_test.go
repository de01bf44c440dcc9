package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"catalog/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) (*TimedDB, *perf.Collector) {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE kv (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	collector := perf.NewCollector(100)
	return NewTimedDB(db, collector, 0), collector
}

// TestTimedDB_RecordsEveryCall verifies each wrapped call lands in the collector as a query entry.
func TestTimedDB_RecordsEveryCall(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO kv (id, val) VALUES (?, ?)", "1", "canvas"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM kv")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM kv WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "canvas" {
		t.Errorf("val = %q, want canvas", val)
	}

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	if got := collector.TotalRecorded(); got != 4 {
		t.Errorf("TotalRecorded = %d, want 4", got)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestQueries) != 4 {
		t.Errorf("expected 4 distinct query ops, got %+v", snap.SlowestQueries)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and flagged as failures.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	tdb, collector := openTimedTestDB(t)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO missing_table VALUES (?)", 1)
	if err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Errors != 1 {
		t.Errorf("expected one failed ExecContext, got %+v", snap.SlowestQueries)
	}

	var v string
	err = tdb.QueryRowContext(context.Background(), "SELECT val FROM kv WHERE id = ?", "none").Scan(&v)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context still records timing.
func TestTimedDB_CancelledContext(t *testing.T) {
	tdb, collector := openTimedTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO kv (id, val) VALUES (?, ?)", "1", "x"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_NilCollectorAndDefaults verifies TimedDB works without a collector and defaults its threshold.
func TestTimedDB_NilCollectorAndDefaults(t *testing.T) {
	db := openTestDB(t)
	tdb := NewTimedDB(db, nil, -1)

	if tdb.threshold != DefaultSlowQuery {
		t.Errorf("threshold = %v, want %v", tdb.threshold, DefaultSlowQuery)
	}
	if tdb.RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
	if _, err := tdb.ExecContext(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}
