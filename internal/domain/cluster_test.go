package domain

import (
	"testing"
	"time"
)

func TestSeverityForCount(t *testing.T) {
	tests := []struct {
		count int
		want  Severity
	}{
		{0, SeverityLow},
		{9, SeverityLow},
		{10, SeverityMedium},
		{49, SeverityMedium},
		{50, SeverityHigh},
		{99, SeverityHigh},
		{100, SeverityCritical},
		{5000, SeverityCritical},
	}

	for _, tt := range tests {
		if got := SeverityForCount(tt.count); got != tt.want {
			t.Errorf("SeverityForCount(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestSeverityString(t *testing.T) {
	pairs := map[Severity]string{
		SeverityLow:      "LOW",
		SeverityMedium:   "MEDIUM",
		SeverityHigh:     "HIGH",
		SeverityCritical: "CRITICAL",
	}
	for s, want := range pairs {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}

func TestClusterFullLocation(t *testing.T) {
	c := ErrorCluster{PrimaryClass: "com.example.A", PrimaryMethod: "b", PrimaryLine: 12}
	if got := c.FullLocation(); got != "com.example.A.b:12" {
		t.Errorf("FullLocation = %q", got)
	}

	noLine := ErrorCluster{PrimaryClass: "com.example.A", PrimaryMethod: "b", PrimaryLine: -1}
	if got := noLine.FullLocation(); got != "com.example.A.b" {
		t.Errorf("FullLocation = %q", got)
	}

	empty := ErrorCluster{PrimaryLine: -1}
	if got := empty.FullLocation(); got != "" {
		t.Errorf("FullLocation = %q, want empty", got)
	}
	if empty.HasPrimaryLocation() {
		t.Error("empty cluster reports a primary location")
	}
}

func TestClusterMostRecentRecord(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c := ErrorCluster{Records: []LogRecord{
		{ID: "r1", Timestamp: base.Add(time.Minute)},
		{ID: "r2", Timestamp: base.Add(time.Hour)},
		{ID: "r3", Timestamp: base},
	}}

	rec, ok := c.MostRecentRecord()
	if !ok || rec.ID != "r2" {
		t.Errorf("MostRecentRecord = %+v, %v", rec, ok)
	}

	var empty ErrorCluster
	if _, ok := empty.MostRecentRecord(); ok {
		t.Error("empty cluster should report no record")
	}
}

func TestClusterSampleRecords(t *testing.T) {
	var c ErrorCluster
	for i := 0; i < 10; i++ {
		c.Records = append(c.Records, LogRecord{ID: string(rune('a' + i))})
	}

	samples := c.SampleRecords(3)
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	if samples[0].ID != "a" || samples[2].ID != "j" {
		t.Errorf("samples should bracket the member list: %v", samples)
	}

	// Fewer members than requested: all of them, copied.
	small := ErrorCluster{Records: []LogRecord{{ID: "x"}, {ID: "y"}}}
	all := small.SampleRecords(5)
	if len(all) != 2 {
		t.Fatalf("got %d samples, want 2", len(all))
	}
	all[0].ID = "mutated"
	if small.Records[0].ID != "x" {
		t.Error("SampleRecords should not share backing storage")
	}

	// A single sample from a larger cluster is just the oldest member.
	one := c.SampleRecords(1)
	if len(one) != 1 || one[0].ID != "a" {
		t.Errorf("SampleRecords(1) = %v, want just %q", one, "a")
	}

	if got := c.SampleRecords(0); got != nil {
		t.Errorf("SampleRecords(0) = %v, want nil", got)
	}
}
