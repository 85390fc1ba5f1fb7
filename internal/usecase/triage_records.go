package usecase

import (
	"log/slog"

	"github.com/user/log-triage/internal/cluster"
	"github.com/user/log-triage/internal/domain"
)

// TriageRecordsUseCase runs the core pipeline on a bounded batch of
// records: fingerprint, cluster, and optionally merge near-duplicates.
type TriageRecordsUseCase struct {
	engine *cluster.Engine
	merger *cluster.Merger
	logger *slog.Logger
}

// NewTriageRecordsUseCase creates the triage use case. A nil merger
// disables the merge pass.
func NewTriageRecordsUseCase(engine *cluster.Engine, merger *cluster.Merger, logger *slog.Logger) *TriageRecordsUseCase {
	return &TriageRecordsUseCase{
		engine: engine,
		merger: merger,
		logger: logger,
	}
}

// Triage clusters a batch and returns the sorted cluster list.
func (uc *TriageRecordsUseCase) Triage(records []domain.LogRecord) []domain.ErrorCluster {
	clusters := uc.engine.Cluster(records)
	uc.logger.Debug("clustered record batch", "records", len(records), "clusters", len(clusters))

	if uc.merger != nil && len(clusters) > 1 {
		before := len(clusters)
		clusters = uc.merger.Merge(clusters)
		if merged := before - len(clusters); merged > 0 {
			uc.logger.Info("merged near-duplicate clusters", "absorbed", merged, "remaining", len(clusters))
		}
	}

	return clusters
}
