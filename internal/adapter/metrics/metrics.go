package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TriageMetrics holds all Prometheus metrics for the triage services.
type TriageMetrics struct {
	RecordsTotal      *prometheus.CounterVec
	BytesTotal        prometheus.Counter
	BatchesTotal      *prometheus.CounterVec
	ClustersPerBatch  prometheus.Histogram
	TriageDuration    prometheus.Histogram
	APIKeyCacheHits   prometheus.Counter
	APIKeyCacheMisses prometheus.Counter
}

// NewTriageMetrics initializes the metrics and registers them with the
// default Prometheus registry.
func NewTriageMetrics() *TriageMetrics {
	return NewTriageMetricsWith(prometheus.DefaultRegisterer)
}

// NewTriageMetricsWith initializes the metrics against an explicit registerer.
func NewTriageMetricsWith(reg prometheus.Registerer) *TriageMetrics {
	factory := promauto.With(reg)
	return &TriageMetrics{
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_triage",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Total number of ingested records by status.",
		}, []string{"status"}), // status: accepted, error_parse, error_size, error_buffer, error_media_type, rate_limited
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "log_triage",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Total number of bytes ingested.",
		}),
		BatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_triage",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Total number of processed batches by outcome.",
		}, []string{"outcome"}), // outcome: ok, sink_error, dlq
		ClustersPerBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "log_triage",
			Subsystem: "pipeline",
			Name:      "clusters_per_batch",
			Help:      "Distribution of cluster counts produced per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		TriageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "log_triage",
			Subsystem: "pipeline",
			Name:      "triage_duration_seconds",
			Help:      "Time spent clustering one batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		APIKeyCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "log_triage",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "log_triage",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}
