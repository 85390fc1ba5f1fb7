package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/log-triage/internal/domain"
)

const recordStreamKey = "triage_records"

// RecordBuffer implements domain.RecordBuffer on Redis Streams.
type RecordBuffer struct {
	client       *redis.Client
	logger       *slog.Logger
	dlqStreamKey string
}

// NewRecordBuffer creates a Redis-backed record buffer and ensures the
// consumer group exists.
func NewRecordBuffer(client *redis.Client, logger *slog.Logger, group, dlqStreamKey string) (*RecordBuffer, error) {
	b := &RecordBuffer{
		client:       client,
		logger:       logger.With("component", "redis_record_buffer"),
		dlqStreamKey: dlqStreamKey,
	}

	if err := b.setupConsumerGroup(context.Background(), group); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *RecordBuffer) setupConsumerGroup(ctx context.Context, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, recordStreamKey, group, "0").Err()
	if err != nil && !isBusyGroupError(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// BufferRecord adds a record to the stream.
func (b *RecordBuffer) BufferRecord(ctx context.Context, rec domain.LogRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal log record: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: recordStreamKey,
		Values: map[string]interface{}{"payload": payload},
	}

	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

// ReadBatch reads up to count records for a consumer-group member.
func (b *RecordBuffer) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.LogRecord, error) {
	args := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{recordStreamKey, ">"},
		Count:    int64(count),
		Block:    2 * time.Second,
	}

	streams, err := b.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to XREADGROUP from redis: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	messages := streams[0].Messages
	records := make([]domain.LogRecord, 0, len(messages))
	for _, msg := range messages {
		payload, ok := msg.Values["payload"].(string)
		if !ok {
			b.logger.Warn("invalid message format in stream, skipping", "message_id", msg.ID)
			continue
		}

		var rec domain.LogRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			b.logger.Warn("failed to unmarshal log record from stream, skipping", "message_id", msg.ID, "error", err)
			continue
		}
		rec.StreamMessageID = msg.ID
		records = append(records, rec)
	}

	return records, nil
}

// Acknowledge marks processed messages as done in the stream.
func (b *RecordBuffer) Acknowledge(ctx context.Context, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := b.client.XAck(ctx, recordStreamKey, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("failed to XACK messages in redis: %w", err)
	}
	return nil
}

// DeadLetter moves a batch of records to the DLQ stream.
func (b *RecordBuffer) DeadLetter(ctx context.Context, recs []domain.LogRecord) error {
	if len(recs) == 0 {
		return nil
	}

	pipe := b.client.Pipeline()
	for _, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			b.logger.Warn("failed to marshal record for DLQ, skipping", "record_id", rec.ID, "error", err)
			continue
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: b.dlqStreamKey,
			Values: map[string]interface{}{"payload": payload},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move records to DLQ: %w", err)
	}
	return nil
}

func isBusyGroupError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
