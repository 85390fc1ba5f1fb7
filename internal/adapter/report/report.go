// Package report renders triage results for humans and machines.
package report

import (
	"time"

	"github.com/user/log-triage/internal/domain"
)

// Data is the assembled input for a report: batch totals plus the cluster
// list and any resolved code contexts, keyed by cluster short id.
type Data struct {
	GeneratedAt  time.Time                      `json:"generated_at"`
	PeriodStart  time.Time                      `json:"period_start"`
	PeriodEnd    time.Time                      `json:"period_end"`
	TotalRecords int                            `json:"total_records"`
	ErrorRecords int                            `json:"error_records"`
	LevelCounts  map[string]int                 `json:"level_counts,omitempty"`
	Clusters     []domain.ErrorCluster          `json:"clusters"`
	CodeContexts map[string]*domain.CodeContext `json:"code_contexts,omitempty"`
}

// ErrorRate returns error records as a percentage of the batch.
func (d *Data) ErrorRate() float64 {
	if d.TotalRecords == 0 {
		return 0
	}
	return float64(d.ErrorRecords) / float64(d.TotalRecords) * 100
}

// CountBySeverity returns how many clusters carry the given severity.
func (d *Data) CountBySeverity(s domain.Severity) int {
	n := 0
	for i := range d.Clusters {
		if d.Clusters[i].Severity == s {
			n++
		}
	}
	return n
}

// Writer renders report data into a textual format.
type Writer interface {
	Generate(data *Data) (string, error)
}
