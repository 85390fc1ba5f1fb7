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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/log-triage/internal/adapter/archive"
	"github.com/user/log-triage/internal/adapter/metrics"
	"github.com/user/log-triage/internal/adapter/repository/postgres"
	redisrepo "github.com/user/log-triage/internal/adapter/repository/redis"
	"github.com/user/log-triage/internal/cluster"
	"github.com/user/log-triage/internal/fingerprint"
	"github.com/user/log-triage/internal/pkg/config"
	"github.com/user/log-triage/internal/pkg/logger"
	"github.com/user/log-triage/internal/trace"
	"github.com/user/log-triage/internal/usecase"
)

const (
	consumerGroup      = "triage-processors"
	processingInterval = 1 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting triage consumer")

	m := metrics.NewTriageMetrics()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Info("starting metrics server", "addr", cfg.AdminAddr)
		if err := http.ListenAndServe(cfg.AdminAddr, metricsMux); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stopChan
		log.Info("shutdown signal received, stopping consumer...")
		cancel()
	}()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "consumer-default"
	}

	buffer, err := redisrepo.NewRecordBuffer(redisClient, log, consumerGroup, cfg.RedisDLQStream)
	if err != nil {
		log.Error("failed to create redis record buffer", "error", err)
		os.Exit(1)
	}
	sink := postgres.NewTriageStore(db, log)

	archiver, err := archive.NewWriter(cfg.ArchiveDir, log)
	if err != nil {
		log.Error("failed to create batch archiver", "error", err)
		os.Exit(1)
	}

	// --- Triage pipeline ---
	parser := trace.NewParser()
	engine := cluster.NewEngine(fingerprint.NewEngine(parser, nil, cfg.FrameCount))
	var merger *cluster.Merger
	if cfg.MergeClusters {
		merger = cluster.NewMerger(cfg.MergeThreshold)
	}
	triage := usecase.NewTriageRecordsUseCase(engine, merger, log)

	processUseCase := usecase.NewProcessRecordsUseCase(
		buffer, sink, archiver, triage, m, log,
		consumerGroup, consumerName,
		cfg.SinkRetryCount, cfg.SinkRetryDelay,
	)

	ticker := time.NewTicker(processingInterval)
	defer ticker.Stop()

	log.Info("triage consumer started", "group", consumerGroup, "consumer", consumerName)

Loop:
	for {
		select {
		case <-ticker.C:
			if _, err := processUseCase.ProcessBatch(ctx); err != nil {
				log.Error("error processing batch", "error", err)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down consumer loop")
			break Loop
		}
	}

	log.Info("triage consumer shut down gracefully")
}
