package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by stores when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// TimeLayout is the text format used for every timestamp column.
const TimeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// schemaVersion is written to PRAGMA user_version after the schema is applied.
const schemaVersion = 1

// LatestSchemaVersion returns the schema version InitDB produces.
func LatestSchemaVersion() int {
	return schemaVersion
}

// Open opens the SQLite database at path with WAL, foreign keys and a busy timeout.
// PRE: path is a file path or ":memory:"
// POST: Returns a pinged connection pool
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, foreign keys enforced, user_version set
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS artwork_type (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hourly_rate_cents INTEGER NOT NULL DEFAULT 0,
		markup_percent INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS material (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		unit_cost_cents INTEGER NOT NULL DEFAULT 0,
		supplier TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artwork (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type_id TEXT NOT NULL,
		year INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		width_cm REAL NOT NULL DEFAULT 0,
		height_cm REAL NOT NULL DEFAULT 0,
		depth_cm REAL NOT NULL DEFAULT 0,
		hours REAL NOT NULL DEFAULT 0,
		price_cents INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (type_id) REFERENCES artwork_type(id)
	);

	CREATE TABLE IF NOT EXISTS artwork_material (
		artwork_id TEXT NOT NULL,
		material_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		quantity REAL NOT NULL,
		PRIMARY KEY (artwork_id, material_id),
		FOREIGN KEY (artwork_id) REFERENCES artwork(id) ON DELETE CASCADE,
		FOREIGN KEY (material_id) REFERENCES material(id)
	);

	CREATE INDEX IF NOT EXISTS idx_artwork_type_id ON artwork(type_id);
	CREATE INDEX IF NOT EXISTS idx_artwork_material_material ON artwork_material(material_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// SchemaVersion reads PRAGMA user_version.
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// FormatTime renders t for a timestamp column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp column. Empty strings yield the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
