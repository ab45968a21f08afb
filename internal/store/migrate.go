package store

import (
	"database/sql"
	"fmt"
)

// migrations[i] upgrades the schema from user_version i to i+1.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  platform TEXT NOT NULL DEFAULT 'Upwork',
  url TEXT,
  description TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'NEW',
  notes TEXT NOT NULL DEFAULT '',
  fit_score INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'MANUAL',
  fingerprint TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_url ON jobs(url) WHERE url IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_jobs_fingerprint ON jobs(fingerprint);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);

CREATE TABLE IF NOT EXISTS proposals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  version INTEGER NOT NULL,
  draft_text TEXT NOT NULL,
  questions TEXT NOT NULL DEFAULT '',
  pricing_note TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  UNIQUE(job_id, version)
);

CREATE TABLE IF NOT EXISTS portfolio_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  url_live TEXT NOT NULL,
  url_github TEXT,
  keywords TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`,
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

// Migrate applies pending migrations, each in its own transaction.
func Migrate(db *sql.DB) error {
	for {
		var v int
		if err := db.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
			return fmt.Errorf("read user_version: %w", err)
		}
		if v >= len(migrations) {
			return nil
		}
		if err := applyMigration(db, v); err != nil {
			return fmt.Errorf("schema v%d: %w", v+1, err)
		}
	}
}

func applyMigration(db *sql.DB, from int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrations[from]); err != nil {
		return err
	}
	// PRAGMA does not accept bound parameters
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, from+1)); err != nil {
		return err
	}
	return tx.Commit()
}
