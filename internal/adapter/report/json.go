package report

import (
	"encoding/json"

	"github.com/user/log-triage/internal/domain"
)

// JSONWriter renders the report as indented JSON for machine consumers.
type JSONWriter struct{}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Generate renders the report. Member record lists are dropped to keep the
// payload bounded; the rollup fields carry the aggregate view.
func (w *JSONWriter) Generate(data *Data) (string, error) {
	slim := *data
	slim.Clusters = make([]domain.ErrorCluster, 0, len(data.Clusters))
	for _, c := range data.Clusters {
		c.Records = nil
		slim.Clusters = append(slim.Clusters, c)
	}

	out, err := json.MarshalIndent(&slim, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
