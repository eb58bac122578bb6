package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteOptions contains settings for the SQLite store.
type SQLiteOptions struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxOpenConns limits open connections to the database.
	// Default: 10
	MaxOpenConns int
}

// DefaultSQLiteOptions returns the default SQLite store settings.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		Path:         "data/audit.db",
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 10,
	}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	metric      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	count       INTEGER NOT NULL DEFAULT 0,
	limit_value INTEGER NOT NULL DEFAULT 0,
	occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_occurred_at ON audit_events(occurred_at);
CREATE INDEX IF NOT EXISTS idx_audit_events_metric ON audit_events(metric);
`

// SQLiteStore implements Store using SQLite with WAL mode.
type SQLiteStore struct {
	db     *sql.DB
	opts   SQLiteOptions
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the database at opts.Path,
// enables WAL mode, and initializes the schema.
func NewSQLiteStore(opts SQLiteOptions) (*SQLiteStore, error) {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		opts:   opts,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit store initialized",
		"path", opts.Path,
		"busy_timeout", opts.BusyTimeout,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	busyTimeoutMs := s.opts.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	insert, err := s.db.Prepare(`
		INSERT INTO audit_events (
			id, metric, kind, label, decision, state, count, limit_value, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	s.insert = insert

	return nil
}

// Save persists one entry.
func (s *SQLiteStore) Save(ctx context.Context, entry *Entry) error {
	_, err := s.insert.ExecContext(ctx,
		entry.ID, entry.Metric, entry.Kind, entry.Label,
		entry.Decision, entry.State, entry.Count, entry.Limit,
		entry.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, metric, kind, label, decision, state, count, limit_value, occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var results []*Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID, &entry.Metric, &entry.Kind, &entry.Label,
			&entry.Decision, &entry.State, &entry.Count, &entry.Limit,
			&entry.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		results = append(results, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return results, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// PruneBefore deletes entries older than the cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_events WHERE occurred_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Cap deletes the oldest entries until at most maxRows remain.
func (s *SQLiteStore) Cap(ctx context.Context, maxRows int64) (int64, error) {
	if maxRows <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM audit_events WHERE id IN (
			SELECT id FROM audit_events
			ORDER BY occurred_at DESC
			LIMIT -1 OFFSET ?
		)
	`, maxRows)
	if err != nil {
		return 0, fmt.Errorf("failed to cap audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close audit database: %w", err)
	}
	return nil
}
