package domain

import "context"

// RecordBuffer is the durable buffer log records pass through between
// ingestion and triage (e.g. Redis Streams).
type RecordBuffer interface {
	// BufferRecord appends a single record to the buffer.
	BufferRecord(ctx context.Context, rec LogRecord) error

	// ReadBatch reads up to count records for a consumer-group member.
	ReadBatch(ctx context.Context, group, consumer string, count int) ([]LogRecord, error)

	// Acknowledge marks buffered records as processed.
	Acknowledge(ctx context.Context, group string, messageIDs ...string) error

	// DeadLetter moves records that could not be sinked to the DLQ stream.
	DeadLetter(ctx context.Context, recs []LogRecord) error
}

// TriageStore is the structured sink for triage output (records and the
// cluster rollups computed from them).
type TriageStore interface {
	// WriteRecords persists a batch of log records idempotently.
	WriteRecords(ctx context.Context, recs []LogRecord) error

	// WriteClusters persists a batch of cluster rollups keyed by fingerprint.
	WriteClusters(ctx context.Context, clusters []ErrorCluster) error

	// ListClusters returns stored clusters ordered by occurrence count
	// descending, up to limit.
	ListClusters(ctx context.Context, limit int) ([]ErrorCluster, error)
}

// APIKeyRepository validates ingest API keys.
type APIKeyRepository interface {
	// IsValid checks whether the key is known and active. Implementations
	// should cache to reduce load on the backing store.
	IsValid(ctx context.Context, key string) (bool, error)
}

// BatchArchiver persists processed record batches as compressed chunks for
// later offline inspection.
type BatchArchiver interface {
	Archive(ctx context.Context, batchID string, recs []LogRecord) (string, error)
}
