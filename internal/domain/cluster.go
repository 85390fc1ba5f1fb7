package domain

import (
	"strconv"
	"strings"
	"time"
)

// Severity is the coarse priority tier of an error cluster, derived purely
// from occurrence count.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Occurrence-count thresholds for severity tiers.
const (
	CriticalThreshold = 100
	HighThreshold     = 50
	MediumThreshold   = 10
)

// SeverityForCount maps an occurrence count to its severity tier.
func SeverityForCount(count int) Severity {
	switch {
	case count >= CriticalThreshold:
		return SeverityCritical
	case count >= HighThreshold:
		return SeverityHigh
	case count >= MediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ErrorCluster aggregates log records that share a fingerprint. It is a
// plain value; all mutation happens inside the cluster engine, which is the
// single owner during a pipeline run.
type ErrorCluster struct {
	ID              string      `json:"id"`
	Fingerprint     string      `json:"fingerprint"`
	ExceptionClass  string      `json:"exception_class,omitempty"`
	MessagePattern  string      `json:"message_pattern,omitempty"`
	PrimaryClass    string      `json:"primary_class,omitempty"`
	PrimaryMethod   string      `json:"primary_method,omitempty"`
	PrimaryFile     string      `json:"primary_file,omitempty"`
	PrimaryLine     int         `json:"primary_line,omitempty"`
	Records         []LogRecord `json:"records,omitempty"`
	FirstSeen       time.Time   `json:"first_seen"`
	LastSeen        time.Time   `json:"last_seen"`
	OccurrenceCount int         `json:"occurrence_count"`
	Severity        Severity    `json:"severity"`
}

// HasPrimaryLocation reports whether a primary location has been pinned.
func (c *ErrorCluster) HasPrimaryLocation() bool {
	return c.PrimaryClass != "" || c.PrimaryFile != ""
}

// FullLocation renders the primary location as "class.method:line".
func (c *ErrorCluster) FullLocation() string {
	var b strings.Builder
	if c.PrimaryClass != "" {
		b.WriteString(c.PrimaryClass)
	}
	if c.PrimaryMethod != "" {
		b.WriteByte('.')
		b.WriteString(c.PrimaryMethod)
	}
	if c.PrimaryLine > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.PrimaryLine))
	}
	return b.String()
}

// MostRecentRecord returns the member record with the latest timestamp.
func (c *ErrorCluster) MostRecentRecord() (LogRecord, bool) {
	if len(c.Records) == 0 {
		return LogRecord{}, false
	}
	latest := c.Records[0]
	for _, r := range c.Records[1:] {
		if r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	return latest, true
}

// SampleRecords returns up to max representative records: the first, evenly
// spaced middles, and the last member in arrival order.
func (c *ErrorCluster) SampleRecords(max int) []LogRecord {
	if max <= 0 {
		return nil
	}
	if len(c.Records) <= max {
		out := make([]LogRecord, len(c.Records))
		copy(out, c.Records)
		return out
	}
	if max == 1 {
		return []LogRecord{c.Records[0]}
	}

	samples := make([]LogRecord, 0, max)
	samples = append(samples, c.Records[0])
	step := len(c.Records) / (max - 1)
	for i := 1; i < max-1; i++ {
		samples = append(samples, c.Records[i*step])
	}
	return append(samples, c.Records[len(c.Records)-1])
}
