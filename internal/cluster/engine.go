// Package cluster aggregates error-level log records into fingerprint-keyed
// clusters and classifies them by occurrence count.
package cluster

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/fingerprint"
	"github.com/user/log-triage/internal/trace"
)

// Engine groups error records by fingerprint. It holds no state across
// calls to Cluster, so independent batches may be processed concurrently
// by separate callers.
type Engine struct {
	fingerprints *fingerprint.Engine
}

// NewEngine creates a clustering engine on top of a fingerprint engine.
func NewEngine(fingerprints *fingerprint.Engine) *Engine {
	return &Engine{fingerprints: fingerprints}
}

// Cluster groups the error-level records of a batch into clusters, assigns
// severity, and returns them sorted by occurrence count descending.
// Deterministic for a fixed input order; ties keep insertion order.
func (e *Engine) Cluster(records []domain.LogRecord) []domain.ErrorCluster {
	byFingerprint := make(map[string]*domain.ErrorCluster)
	var order []string

	for _, rec := range records {
		if !rec.IsError() {
			continue
		}

		fp := e.fingerprints.Fingerprint(rec)
		c, ok := byFingerprint[fp]
		if !ok {
			c = &domain.ErrorCluster{
				ID:          ShortID(fp),
				Fingerprint: fp,
				PrimaryLine: -1,
			}
			byFingerprint[fp] = c
			order = append(order, fp)
		}

		update(c, rec)
	}

	clusters := make([]domain.ErrorCluster, 0, len(order))
	for _, fp := range order {
		c := byFingerprint[fp]
		c.Severity = domain.SeverityForCount(c.OccurrenceCount)
		clusters = append(clusters, *c)
	}

	sortByCount(clusters)
	return clusters
}

// update folds one record into a cluster aggregate. The engine's map is the
// single owner of the cluster during a run; the entity itself carries no
// mutation methods.
func update(c *domain.ErrorCluster, rec domain.LogRecord) {
	c.Records = append(c.Records, rec)
	c.OccurrenceCount++

	ts := rec.Timestamp
	if c.FirstSeen.IsZero() || ts.Before(c.FirstSeen) {
		c.FirstSeen = ts
	}
	if c.LastSeen.IsZero() || ts.After(c.LastSeen) {
		c.LastSeen = ts
	}

	// Primary location pins to the first record that supplies one.
	if c.PrimaryFile == "" && rec.FileName != "" {
		c.PrimaryFile = rec.FileName
		c.PrimaryLine = rec.LineNumber
		c.PrimaryMethod = rec.MethodName
		c.PrimaryClass = rec.ClassName
	}

	if c.ExceptionClass == "" && rec.HasStackTrace() {
		c.ExceptionClass = trace.ExceptionClass(rec.StackTrace)
	}

	if c.MessagePattern == "" {
		c.MessagePattern = fingerprint.NormalizeMessage(rec.Message)
	}
}

// ShortID derives the human-readable display id from a fingerprint: a fixed
// prefix plus 8 hex digits of a 32-bit hash. Collisions are possible; the
// fingerprint string remains the true identity key.
func ShortID(fp string) string {
	h := fnv.New32a()
	h.Write([]byte(fp))
	return fmt.Sprintf("ERR-%08X", h.Sum32())
}

func sortByCount(clusters []domain.ErrorCluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].OccurrenceCount > clusters[j].OccurrenceCount
	})
}
