package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/log-triage/internal/adapter/api/handler"
	"github.com/user/log-triage/internal/adapter/api/middleware"
	"github.com/user/log-triage/internal/adapter/metrics"
	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/pkg/config"
	"github.com/user/log-triage/internal/usecase"
)

// NewRouter creates and configures the HTTP router for the ingest service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	apiKeyRepo domain.APIKeyRepository,
	ingestUseCase *usecase.IngestRecordUseCase,
	store domain.TriageStore,
	m *metrics.TriageMetrics,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging(logger))

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, m, cfg.MaxRecordSize)
	clustersHandler := handler.NewClustersHandler(store, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(apiKeyRepo, logger))
		r.Use(middleware.RateLimit(cfg.IngestRateLimit, cfg.IngestRateBurst, m, logger))
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodGet, "/clusters", clustersHandler)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
