// Package archive persists processed record batches as zstd-compressed
// NDJSON chunks for offline inspection.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/user/log-triage/internal/domain"
)

// Writer writes one compressed chunk per batch into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates the archive directory if needed.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger.With("component", "batch_archiver")}, nil
}

// Archive writes the batch as chunk-<unix>-<batchID>.ndjson.zst and returns
// the file path. Records that fail to marshal are skipped.
func (w *Writer) Archive(ctx context.Context, batchID string, recs []domain.LogRecord) (string, error) {
	name := fmt.Sprintf("chunk-%d-%s.ndjson.zst", time.Now().Unix(), batchID)
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create archive chunk: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}

	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			w.logger.Warn("failed to marshal record for archive, skipping", "record_id", rec.ID, "error", err)
			continue
		}
		if _, err := enc.Write(append(data, '\n')); err != nil {
			enc.Close()
			return "", fmt.Errorf("failed to write archive chunk: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to flush archive chunk: %w", err)
	}
	return path, nil
}

// ReadChunk decompresses one chunk back into records. The pipeline never
// reads chunks back; this exists for offline tooling that replays or
// inspects archived batches.
func ReadChunk(path string) ([]domain.LogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive chunk: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var recs []domain.LogRecord
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec domain.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("corrupt archive chunk %s: %w", path, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive chunk: %w", err)
	}
	return recs, nil
}
