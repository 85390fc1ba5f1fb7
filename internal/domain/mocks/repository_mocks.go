package mocks

import (
	"context"
	"sync"

	"github.com/user/log-triage/internal/domain"
)

// MockRecordBuffer is a mock implementation of domain.RecordBuffer for testing.
type MockRecordBuffer struct {
	mu              sync.Mutex
	BufferedRecords []domain.LogRecord
	AckedMessageIDs []string
	DLQRecords      []domain.LogRecord
	ReadBatchResult []domain.LogRecord
	BufferErr       error
	ReadErr         error
	AckErr          error
	DLQErr          error
}

func (m *MockRecordBuffer) BufferRecord(ctx context.Context, rec domain.LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BufferErr != nil {
		return m.BufferErr
	}
	m.BufferedRecords = append(m.BufferedRecords, rec)
	return nil
}

func (m *MockRecordBuffer) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.LogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.ReadBatchResult, nil
}

func (m *MockRecordBuffer) Acknowledge(ctx context.Context, group string, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.AckedMessageIDs = append(m.AckedMessageIDs, messageIDs...)
	return nil
}

func (m *MockRecordBuffer) DeadLetter(ctx context.Context, recs []domain.LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DLQErr != nil {
		return m.DLQErr
	}
	m.DLQRecords = append(m.DLQRecords, recs...)
	return nil
}

// MockTriageStore is a mock implementation of domain.TriageStore for testing.
type MockTriageStore struct {
	mu               sync.Mutex
	WrittenRecords   []domain.LogRecord
	WrittenClusters  []domain.ErrorCluster
	ListResult       []domain.ErrorCluster
	WriteRecordsErr  error
	WriteClustersErr error
	ListErr          error
}

func (m *MockTriageStore) WriteRecords(ctx context.Context, recs []domain.LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteRecordsErr != nil {
		return m.WriteRecordsErr
	}
	m.WrittenRecords = append(m.WrittenRecords, recs...)
	return nil
}

func (m *MockTriageStore) WriteClusters(ctx context.Context, clusters []domain.ErrorCluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteClustersErr != nil {
		return m.WriteClustersErr
	}
	m.WrittenClusters = append(m.WrittenClusters, clusters...)
	return nil
}

func (m *MockTriageStore) ListClusters(ctx context.Context, limit int) ([]domain.ErrorCluster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ListResult, nil
}

// MockAPIKeyRepository is a mock implementation of domain.APIKeyRepository.
type MockAPIKeyRepository struct {
	ValidKeys map[string]bool
	Err       error
}

func (m *MockAPIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.ValidKeys[key], nil
}

// MockBatchArchiver is a mock implementation of domain.BatchArchiver.
type MockBatchArchiver struct {
	mu       sync.Mutex
	Archived [][]domain.LogRecord
	Err      error
}

func (m *MockBatchArchiver) Archive(ctx context.Context, batchID string, recs []domain.LogRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Archived = append(m.Archived, recs)
	return "chunk-" + batchID + ".ndjson.zst", nil
}
