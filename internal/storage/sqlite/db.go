// Package sqlite persists sweep runs and their ranked results.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sweeps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sweep_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	request TEXT,
	error TEXT,
	started_at TEXT NOT NULL,
	completed_at TEXT,
	combo_count INTEGER NOT NULL DEFAULT 0,
	track_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sweep_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sweep_id TEXT NOT NULL REFERENCES sweeps(sweep_id) ON DELETE CASCADE,
	rank INTEGER NOT NULL,
	combo_index INTEGER NOT NULL,
	score REAL NOT NULL,
	params TEXT,
	mean_accuracy REAL NOT NULL DEFAULT 0,
	median_accuracy REAL NOT NULL DEFAULT 0,
	accuracy_stddev REAL NOT NULL DEFAULT 0,
	within_2 INTEGER NOT NULL DEFAULT 0,
	within_5 INTEGER NOT NULL DEFAULT 0,
	within_10 INTEGER NOT NULL DEFAULT 0,
	within_15 INTEGER NOT NULL DEFAULT 0,
	within_20 INTEGER NOT NULL DEFAULT 0,
	outside INTEGER NOT NULL DEFAULT 0,
	median_ratio REAL NOT NULL DEFAULT 0,
	gain_reduction_pct REAL NOT NULL DEFAULT 0,
	loss_reduction_pct REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sweep_results_sweep ON sweep_results(sweep_id, rank);
`

// Open opens (creating if necessary) the results database at path and applies
// the schema. Pass ":memory:" for an ephemeral database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}
