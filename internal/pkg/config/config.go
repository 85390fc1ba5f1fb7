package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all service configuration.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxRecordSize   int64         `env:"MAX_RECORD_SIZE_BYTES" envDefault:"1048576"` // 1MB
	RedisAddr       string        `env:"REDIS_ADDR,required"`
	RedisDLQStream  string        `env:"REDIS_DLQ_STREAM" envDefault:"triage_records_dlq"`
	PostgresURL     string        `env:"POSTGRES_URL,required"`
	APIKeyCacheTTL  time.Duration `env:"API_KEY_CACHE_TTL" envDefault:"5m"`
	IngestAddr      string        `env:"INGEST_SERVER_ADDR" envDefault:":8080"`
	AdminAddr       string        `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`
	IngestRateLimit float64       `env:"INGEST_RATE_LIMIT" envDefault:"1000"`
	IngestRateBurst int           `env:"INGEST_RATE_BURST" envDefault:"2000"`
	ArchiveDir      string        `env:"ARCHIVE_DIR" envDefault:"./archive"`
	SinkRetryCount  int           `env:"SINK_RETRY_COUNT" envDefault:"3"`
	SinkRetryDelay  time.Duration `env:"SINK_RETRY_DELAY" envDefault:"1s"`
	FrameCount      int           `env:"FINGERPRINT_FRAME_COUNT" envDefault:"5"`
	MergeClusters   bool          `env:"MERGE_CLUSTERS" envDefault:"true"`
	MergeThreshold  float64       `env:"MERGE_SIMILARITY_THRESHOLD" envDefault:"0.7"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
