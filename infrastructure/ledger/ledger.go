// Package ledger records which files have been processed so repeat runs
// can skip content that has not changed since it was last downloaded.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spingest/logging"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_records (
	identifier   TEXT PRIMARY KEY,
	version      TEXT NOT NULL,
	path         TEXT NOT NULL,
	processed_at TEXT NOT NULL
);
`

// Ledger is a small sqlite-backed record of processed files, keyed by the
// stable file identifier with the version seen at processing time.
type Ledger struct {
	db     *sql.DB
	logger *logging.Logger
}

// Open opens (and if necessary creates) the ledger database at path.
func Open(path string, logger *logging.Logger) (*Ledger, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// Single writer keeps concurrent runs from tripping over each other.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	logger.Debug("Ledger opened", "path", path)

	return &Ledger{db: db, logger: logger}, nil
}

// Seen reports whether the given identifier was already processed at the
// given version. A record with a different version counts as unseen so
// updated files are processed again.
func (l *Ledger) Seen(ctx context.Context, identifier, version string) (bool, error) {
	var stored string
	err := l.db.QueryRowContext(ctx,
		`SELECT version FROM processed_records WHERE identifier = ?`,
		identifier,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return stored == version, nil
}

// Record upserts the processed record for identifier.
func (l *Ledger) Record(ctx context.Context, identifier, version, path string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO processed_records (identifier, version, path, processed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			version = excluded.version,
			path = excluded.path,
			processed_at = excluded.processed_at`,
		identifier, version, path, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record processed file: %w", err)
	}
	return nil
}

// Close checkpoints and closes the ledger database.
func (l *Ledger) Close() error {
	if _, err := l.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		l.logger.Warn("failed to checkpoint WAL", "error", err)
	}
	return l.db.Close()
}
