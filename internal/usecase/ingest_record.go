package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/user/log-triage/internal/domain"
)

// IngestRecordUseCase handles the business logic for accepting a log
// record into the pipeline.
type IngestRecordUseCase struct {
	buffer domain.RecordBuffer
	logger *slog.Logger
}

// NewIngestRecordUseCase creates a new IngestRecordUseCase.
func NewIngestRecordUseCase(buffer domain.RecordBuffer, logger *slog.Logger) *IngestRecordUseCase {
	return &IngestRecordUseCase{
		buffer: buffer,
		logger: logger,
	}
}

// Ingest enriches and buffers a single record.
func (uc *IngestRecordUseCase) Ingest(ctx context.Context, rec *domain.LogRecord) error {
	rec.ReceivedAt = time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = rec.ReceivedAt
	}

	if err := uc.buffer.BufferRecord(ctx, *rec); err != nil {
		uc.logger.Error("failed to buffer log record", "error", err, "record_id", rec.ID)
		return err
	}

	return nil
}
