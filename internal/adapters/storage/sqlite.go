// Package storage provides the SQLite implementation of the focus history
// repository.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"taskroll/internal/ports"
)

// Open creates a SQLite-backed history repository at the given path,
// migrating the schema as needed.
func Open(dbPath string) (ports.HistoryRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	repo := &historyRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// OpenMemory creates an in-memory history repository for testing.
func OpenMemory() (ports.HistoryRepository, error) {
	return Open(":memory:")
}

func (r *historyRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS focus_records (
		id TEXT PRIMARY KEY,
		task_uuid TEXT NOT NULL,
		description TEXT NOT NULL,
		project TEXT,
		planned_ms INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		outcome TEXT,
		git_branch TEXT,
		git_commit TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_focus_task ON focus_records(task_uuid);
	CREATE INDEX IF NOT EXISTS idx_focus_started ON focus_records(started_at);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
