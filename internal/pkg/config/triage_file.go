package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TriageFile is the YAML configuration for the one-shot scan CLI: where to
// find source code, how wide a context window to cut, and which class-name
// prefixes count as framework frames.
type TriageFile struct {
	SourceRoots       []string `yaml:"source_roots"`
	ContextLines      int      `yaml:"context_lines"`
	FrameworkPrefixes []string `yaml:"framework_prefixes"`
	DatabasePath      string   `yaml:"database_path"`
	ReportFormat      string   `yaml:"report_format"`
}

// LoadTriageFile reads and parses the YAML file at path. A missing path
// returns defaults without error.
func LoadTriageFile(path string) (*TriageFile, error) {
	tf := &TriageFile{
		ContextLines: 10,
		DatabasePath: "triage.db",
		ReportFormat: "markdown",
	}

	if path == "" {
		return tf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tf, nil
		}
		return nil, fmt.Errorf("reading triage config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, tf); err != nil {
		return nil, fmt.Errorf("parsing triage config %s: %w", path, err)
	}

	if tf.ContextLines <= 0 {
		tf.ContextLines = 10
	}
	if tf.DatabasePath == "" {
		tf.DatabasePath = "triage.db"
	}
	if tf.ReportFormat == "" {
		tf.ReportFormat = "markdown"
	}

	return tf, nil
}
