package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/user/log-triage/internal/adapter/metrics"
	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/usecase"
)

// errBufferWrite marks downstream buffer failures so they surface as 500s
// rather than client errors.
var errBufferWrite = errors.New("buffer write failed")

// IngestHandler handles HTTP requests for log record ingestion.
type IngestHandler struct {
	useCase       *usecase.IngestRecordUseCase
	logger        *slog.Logger
	metrics       *metrics.TriageMetrics
	maxRecordSize int64
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(uc *usecase.IngestRecordUseCase, logger *slog.Logger, m *metrics.TriageMetrics, maxRecordSize int64) *IngestHandler {
	return &IngestHandler{
		useCase:       uc,
		logger:        logger,
		metrics:       m,
		maxRecordSize: maxRecordSize,
	}
}

// ServeHTTP processes incoming ingestion requests. A single record is sent
// as application/json; batches stream as application/x-ndjson.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRecordSize)

	var err error
	switch r.Header.Get("Content-Type") {
	case "application/json":
		err = h.handleSingleJSON(r.Context(), r.Body)
	case "application/x-ndjson":
		err = h.handleNDJSON(r.Context(), r.Body)
	default:
		h.count("error_media_type")
		http.Error(w, "Unsupported Content-Type", http.StatusUnsupportedMediaType)
		return
	}

	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.count("error_size")
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		if errors.Is(err, errBufferWrite) {
			h.logger.Error("failed to buffer ingested records", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.logger.Error("failed to process ingest request", "error", err)
		h.count("error_parse")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *IngestHandler) handleSingleJSON(ctx context.Context, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	var rec domain.LogRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	if err := h.useCase.Ingest(ctx, &rec); err != nil {
		h.count("error_buffer")
		return fmt.Errorf("%w: %v", errBufferWrite, err)
	}

	h.count("accepted")
	if h.metrics != nil {
		h.metrics.BytesTotal.Add(float64(len(data)))
	}
	return nil
}

func (h *IngestHandler) handleNDJSON(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), int(h.maxRecordSize))

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec domain.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}

		if err := h.useCase.Ingest(ctx, &rec); err != nil {
			h.count("error_buffer")
			return fmt.Errorf("%w: %v", errBufferWrite, err)
		}

		h.count("accepted")
		if h.metrics != nil {
			h.metrics.BytesTotal.Add(float64(len(line)))
		}
	}

	return scanner.Err()
}

func (h *IngestHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.RecordsTotal.WithLabelValues(status).Inc()
	}
}
