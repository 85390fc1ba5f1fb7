package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"

	"github.com/user/log-triage/internal/domain"
)

// TriageStore implements domain.TriageStore on PostgreSQL. Record batches
// go through the COPY protocol into a temp table and are merged with an
// upsert, so replayed batches stay idempotent.
type TriageStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTriageStore creates a PostgreSQL triage store.
func NewTriageStore(db *sql.DB, logger *slog.Logger) *TriageStore {
	return &TriageStore{db: db, logger: logger.With("component", "postgres_triage_store")}
}

// WriteRecords writes a batch of log records using COPY with an upsert on
// record_id.
func (s *TriageStore) WriteRecords(ctx context.Context, recs []domain.LogRecord) error {
	if len(recs) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // no-op after Commit

	const tempTable = "triage_records_temp_import"
	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+tempTable+` (LIKE triage_records INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return err
	}

	stmt, err := txn.Prepare(pq.CopyIn(tempTable,
		"record_id", "ts", "received_at", "level", "logger", "message",
		"stack_trace", "class_name", "method_name", "file_name", "line_number",
		"trace_id", "thread_name"))
	if err != nil {
		return err
	}

	for _, rec := range recs {
		_, err = stmt.ExecContext(ctx, rec.ID, rec.Timestamp, rec.ReceivedAt,
			rec.Level.String(), rec.Logger, rec.Message, rec.StackTrace,
			rec.ClassName, rec.MethodName, rec.FileName, rec.LineNumber,
			rec.TraceID, rec.ThreadName)
		if err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if err := stmt.Close(); err != nil {
		return err
	}

	const upsert = `
		INSERT INTO triage_records (record_id, ts, received_at, level, logger, message,
			stack_trace, class_name, method_name, file_name, line_number, trace_id, thread_name)
		SELECT record_id, ts, received_at, level, logger, message,
			stack_trace, class_name, method_name, file_name, line_number, trace_id, thread_name
		FROM ` + tempTable + `
		ON CONFLICT (record_id) DO NOTHING;
	`
	if _, err := txn.ExecContext(ctx, upsert); err != nil {
		return err
	}

	return txn.Commit()
}

// WriteClusters upserts cluster rollups keyed by fingerprint, accumulating
// occurrence counts and widening the first/last-seen window.
func (s *TriageStore) WriteClusters(ctx context.Context, clusters []domain.ErrorCluster) error {
	if len(clusters) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	const upsert = `
		INSERT INTO error_clusters (fingerprint, short_id, exception_class, message_pattern,
			primary_class, primary_method, primary_file, primary_line,
			first_seen, last_seen, occurrence_count, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (fingerprint) DO UPDATE SET
			occurrence_count = error_clusters.occurrence_count + EXCLUDED.occurrence_count,
			first_seen = LEAST(error_clusters.first_seen, EXCLUDED.first_seen),
			last_seen = GREATEST(error_clusters.last_seen, EXCLUDED.last_seen),
			severity = EXCLUDED.severity;
	`

	stmt, err := txn.PrepareContext(ctx, upsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range clusters {
		_, err = stmt.ExecContext(ctx, c.Fingerprint, c.ID, c.ExceptionClass,
			c.MessagePattern, c.PrimaryClass, c.PrimaryMethod, c.PrimaryFile,
			c.PrimaryLine, c.FirstSeen, c.LastSeen, c.OccurrenceCount,
			c.Severity.String())
		if err != nil {
			return err
		}
	}

	return txn.Commit()
}

// ListClusters returns stored cluster rollups ordered by occurrence count.
func (s *TriageStore) ListClusters(ctx context.Context, limit int) ([]domain.ErrorCluster, error) {
	const query = `
		SELECT fingerprint, short_id, exception_class, message_pattern,
			primary_class, primary_method, primary_file, primary_line,
			first_seen, last_seen, occurrence_count
		FROM error_clusters
		ORDER BY occurrence_count DESC
		LIMIT $1;
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []domain.ErrorCluster
	for rows.Next() {
		var c domain.ErrorCluster
		if err := rows.Scan(&c.Fingerprint, &c.ID, &c.ExceptionClass,
			&c.MessagePattern, &c.PrimaryClass, &c.PrimaryMethod, &c.PrimaryFile,
			&c.PrimaryLine, &c.FirstSeen, &c.LastSeen, &c.OccurrenceCount); err != nil {
			return nil, err
		}
		// Severity reflects the accumulated count, not the stored batch tier.
		c.Severity = domain.SeverityForCount(c.OccurrenceCount)
		clusters = append(clusters, c)
	}

	return clusters, rows.Err()
}
