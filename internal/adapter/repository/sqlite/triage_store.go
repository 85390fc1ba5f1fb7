// Package sqlite provides the embedded triage store used by the one-shot
// scan CLI, where no Postgres is available.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/log-triage/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS triage_records (
	record_id   TEXT PRIMARY KEY,
	ts          TEXT NOT NULL,
	received_at TEXT,
	level       TEXT NOT NULL,
	logger      TEXT,
	message     TEXT NOT NULL,
	stack_trace TEXT,
	class_name  TEXT,
	method_name TEXT,
	file_name   TEXT,
	line_number INTEGER,
	trace_id    TEXT,
	thread_name TEXT
);

CREATE TABLE IF NOT EXISTS error_clusters (
	fingerprint      TEXT PRIMARY KEY,
	short_id         TEXT NOT NULL,
	exception_class  TEXT,
	message_pattern  TEXT,
	primary_class    TEXT,
	primary_method   TEXT,
	primary_file     TEXT,
	primary_line     INTEGER,
	first_seen       TEXT,
	last_seen        TEXT,
	occurrence_count INTEGER NOT NULL,
	severity         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_ts ON triage_records(ts);
CREATE INDEX IF NOT EXISTS idx_clusters_count ON error_clusters(occurrence_count DESC);
`

// TriageStore implements domain.TriageStore on an embedded SQLite database.
type TriageStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path, ensuring the parent
// directory and schema exist.
func Open(path string, logger *slog.Logger) (*TriageStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &TriageStore{db: db, logger: logger.With("component", "sqlite_triage_store")}, nil
}

// Close closes the underlying database.
func (s *TriageStore) Close() error {
	return s.db.Close()
}

// WriteRecords inserts a batch of records, ignoring duplicates by record id.
func (s *TriageStore) WriteRecords(ctx context.Context, recs []domain.LogRecord) error {
	if len(recs) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triage_records
			(record_id, ts, received_at, level, logger, message, stack_trace,
			 class_name, method_name, file_name, line_number, trace_id, thread_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		_, err = stmt.ExecContext(ctx, rec.ID,
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.ReceivedAt.UTC().Format(time.RFC3339Nano),
			rec.Level.String(), rec.Logger, rec.Message, rec.StackTrace,
			rec.ClassName, rec.MethodName, rec.FileName, rec.LineNumber,
			rec.TraceID, rec.ThreadName)
		if err != nil {
			return err
		}
	}

	return txn.Commit()
}

// WriteClusters upserts cluster rollups keyed by fingerprint.
func (s *TriageStore) WriteClusters(ctx context.Context, clusters []domain.ErrorCluster) error {
	if len(clusters) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, `
		INSERT INTO error_clusters
			(fingerprint, short_id, exception_class, message_pattern,
			 primary_class, primary_method, primary_file, primary_line,
			 first_seen, last_seen, occurrence_count, severity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			occurrence_count = occurrence_count + excluded.occurrence_count,
			first_seen = MIN(first_seen, excluded.first_seen),
			last_seen = MAX(last_seen, excluded.last_seen),
			severity = excluded.severity`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range clusters {
		_, err = stmt.ExecContext(ctx, c.Fingerprint, c.ID, c.ExceptionClass,
			c.MessagePattern, c.PrimaryClass, c.PrimaryMethod, c.PrimaryFile,
			c.PrimaryLine,
			c.FirstSeen.UTC().Format(time.RFC3339Nano),
			c.LastSeen.UTC().Format(time.RFC3339Nano),
			c.OccurrenceCount, c.Severity.String())
		if err != nil {
			return err
		}
	}

	return txn.Commit()
}

// ListClusters returns stored cluster rollups ordered by occurrence count.
func (s *TriageStore) ListClusters(ctx context.Context, limit int) ([]domain.ErrorCluster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, short_id, exception_class, message_pattern,
			primary_class, primary_method, primary_file, primary_line,
			first_seen, last_seen, occurrence_count
		FROM error_clusters
		ORDER BY occurrence_count DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []domain.ErrorCluster
	for rows.Next() {
		var c domain.ErrorCluster
		var firstSeen, lastSeen string
		if err := rows.Scan(&c.Fingerprint, &c.ID, &c.ExceptionClass,
			&c.MessagePattern, &c.PrimaryClass, &c.PrimaryMethod, &c.PrimaryFile,
			&c.PrimaryLine, &firstSeen, &lastSeen, &c.OccurrenceCount); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, firstSeen); err == nil {
			c.FirstSeen = t
		}
		if t, err := time.Parse(time.RFC3339Nano, lastSeen); err == nil {
			c.LastSeen = t
		}
		c.Severity = domain.SeverityForCount(c.OccurrenceCount)
		clusters = append(clusters, c)
	}

	return clusters, rows.Err()
}

// CountByLevel returns stored record counts per level, for report rollups.
func (s *TriageStore) CountByLevel(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level, COUNT(*) FROM triage_records GROUP BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[level] = n
	}
	return counts, rows.Err()
}
