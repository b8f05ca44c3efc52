package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS recent_repositories (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	use_count INTEGER NOT NULL DEFAULT 1,
	last_used_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(owner, name)
);

CREATE TABLE IF NOT EXISTS merge_runs (
	id TEXT PRIMARY KEY,
	repository TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	processed INTEGER NOT NULL DEFAULT 0,
	merged INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS merge_run_results (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES merge_runs(id),
	pr_number INTEGER NOT NULL,
	title TEXT NOT NULL,
	outcome TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_merge_run_results_run_id ON merge_run_results(run_id);
`

// Init initializes the SQLite database connection at the given path
func Init(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var err error
	DB, err = sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return err
	}

	// A CLI never needs more than one writer.
	DB.SetMaxOpenConns(1)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		return err
	}

	if _, err = DB.Exec(schema); err != nil {
		return err
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
