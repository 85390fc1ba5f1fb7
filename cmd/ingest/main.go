package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/log-triage/internal/adapter/api"
	"github.com/user/log-triage/internal/adapter/metrics"
	"github.com/user/log-triage/internal/adapter/repository/postgres"
	redisrepo "github.com/user/log-triage/internal/adapter/repository/redis"
	"github.com/user/log-triage/internal/pkg/config"
	"github.com/user/log-triage/internal/pkg/logger"
	"github.com/user/log-triage/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

const consumerGroup = "triage-processors"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.NewTriageMetrics()

	// --- Admin and metrics server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful shutdown context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis connections ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// --- Repositories ---
	apiKeyRepo := postgres.NewAPIKeyRepository(db, log, cfg.APIKeyCacheTTL, m)
	buffer, err := redisrepo.NewRecordBuffer(redisClient, log, consumerGroup, cfg.RedisDLQStream)
	if err != nil {
		log.Error("failed to initialize redis record buffer", "error", err)
		os.Exit(1)
	}
	store := postgres.NewTriageStore(db, log)

	// --- Use cases and server ---
	ingestUseCase := usecase.NewIngestRecordUseCase(buffer, log)

	ingestServer := &http.Server{
		Addr:         cfg.IngestAddr,
		Handler:      api.NewRouter(cfg, log, apiKeyRepo, ingestUseCase, store, m),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting ingest server", "addr", ingestServer.Addr)
		if err := ingestServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ingest server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	if err := ingestServer.Shutdown(shutdownCtx); err != nil {
		log.Error("ingest server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
