// Package runlog provides SQLite-based history of harness runs.
//
// One row is recorded per completed batch. The log is informational: callers
// treat write failures as non-fatal so a broken database never fails a run.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run describes one completed harness run.
type Run struct {
	// ID is a generated identifier.
	ID string
	// ManifestPath is the manifest the run processed.
	ManifestPath string
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
	// Total is the number of entries processed, including cache hits.
	Total int
	// Failures is the harness-level failure count.
	Failures int
	// CleanRepos and TotalDiagnostics come from the aggregate summary.
	CleanRepos       int
	TotalDiagnostics int
}

// DB wraps an SQLite database holding run history.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the run-history database at path, creating parent directories
// and applying migrations. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// migrate applies all pending schema migrations.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			manifest_path TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			total INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			clean_repos INTEGER NOT NULL,
			total_diagnostics INTEGER NOT NULL
		)`,
	}

	for i, stmt := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := db.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}

// RecordRun inserts one run, assigning an ID if the run has none.
func (db *DB) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()[:8]
	}

	_, err := db.conn.Exec(`
		INSERT INTO runs (id, manifest_path, started_at, finished_at,
			total, failures, clean_repos, total_diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ManifestPath, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Total, run.Failures, run.CleanRepos, run.TotalDiagnostics)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, manifest_path, started_at, finished_at,
			total, failures, clean_repos, total_diagnostics
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ManifestPath, &r.StartedAt, &r.FinishedAt,
			&r.Total, &r.Failures, &r.CleanRepos, &r.TotalDiagnostics); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
