package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/user/log-triage/internal/adapter/metrics"
	"github.com/user/log-triage/internal/domain"
)

const defaultBatchSize = 1000

// ProcessRecordsUseCase orchestrates one consumer cycle: read a batch from
// the buffer, triage it, write records and cluster rollups to the sink,
// archive the raw batch, and acknowledge.
type ProcessRecordsUseCase struct {
	buffer       domain.RecordBuffer
	sink         domain.TriageStore
	archiver     domain.BatchArchiver
	triage       *TriageRecordsUseCase
	metrics      *metrics.TriageMetrics
	logger       *slog.Logger
	group        string
	consumer     string
	retryCount   int
	retryBackoff time.Duration
}

// NewProcessRecordsUseCase creates the consumer use case. The archiver may
// be nil to skip chunk archiving, and the metrics may be nil.
func NewProcessRecordsUseCase(
	buffer domain.RecordBuffer,
	sink domain.TriageStore,
	archiver domain.BatchArchiver,
	triage *TriageRecordsUseCase,
	m *metrics.TriageMetrics,
	logger *slog.Logger,
	group, consumer string,
	retryCount int,
	retryBackoff time.Duration,
) *ProcessRecordsUseCase {
	return &ProcessRecordsUseCase{
		buffer:       buffer,
		sink:         sink,
		archiver:     archiver,
		triage:       triage,
		metrics:      m,
		logger:       logger,
		group:        group,
		consumer:     consumer,
		retryCount:   retryCount,
		retryBackoff: retryBackoff,
	}
}

// ProcessBatch runs one cycle and returns the number of records processed.
// Sink failures are retried; records that still cannot be written go to
// the DLQ and are acknowledged so the stream keeps draining.
func (uc *ProcessRecordsUseCase) ProcessBatch(ctx context.Context) (int, error) {
	records, err := uc.buffer.ReadBatch(ctx, uc.group, uc.consumer, defaultBatchSize)
	if err != nil {
		uc.logger.Error("failed to read record batch from buffer", "error", err)
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	uc.logger.Debug("read batch of records from buffer", "count", len(records))

	triageStart := time.Now()
	clusters := uc.triage.Triage(records)
	if uc.metrics != nil {
		uc.metrics.TriageDuration.Observe(time.Since(triageStart).Seconds())
		uc.metrics.ClustersPerBatch.Observe(float64(len(clusters)))
	}

	sinkErr := uc.writeWithRetry(ctx, records, clusters)
	if sinkErr != nil {
		uc.logger.Error("failed to write triage batch to sink after retries", "error", sinkErr)
		if err := uc.buffer.DeadLetter(ctx, records); err != nil {
			uc.countBatch("sink_error")
			uc.logger.Error("failed to dead-letter record batch", "error", err)
			return 0, err
		}
		uc.countBatch("dlq")
	}

	if uc.archiver != nil && sinkErr == nil {
		batchID := uuid.NewString()
		if path, err := uc.archiver.Archive(ctx, batchID, records); err != nil {
			// Archiving is best-effort; the sink already has the data.
			uc.logger.Warn("failed to archive record batch", "error", err, "batch_id", batchID)
		} else {
			uc.logger.Debug("archived record batch", "path", path, "count", len(records))
		}
	}

	messageIDs := make([]string, len(records))
	for i, rec := range records {
		messageIDs[i] = rec.StreamMessageID
	}
	if err := uc.buffer.Acknowledge(ctx, uc.group, messageIDs...); err != nil {
		uc.logger.Error("failed to acknowledge records in buffer", "error", err)
		return 0, err
	}

	if sinkErr != nil {
		return 0, sinkErr
	}

	uc.countBatch("ok")
	uc.logger.Info("processed and sinked triage batch",
		"records", len(records), "clusters", len(clusters))
	return len(records), nil
}

func (uc *ProcessRecordsUseCase) countBatch(outcome string) {
	if uc.metrics != nil {
		uc.metrics.BatchesTotal.WithLabelValues(outcome).Inc()
	}
}

func (uc *ProcessRecordsUseCase) writeWithRetry(ctx context.Context, records []domain.LogRecord, clusters []domain.ErrorCluster) error {
	var lastErr error
	for i := 0; i < uc.retryCount; i++ {
		err := uc.sink.WriteRecords(ctx, records)
		if err == nil {
			err = uc.sink.WriteClusters(ctx, clusters)
		}
		if err == nil {
			return nil
		}
		lastErr = err
		uc.logger.Warn("failed to write batch to sink, retrying...", "attempt", i+1, "error", err)
		select {
		case <-time.After(uc.retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
