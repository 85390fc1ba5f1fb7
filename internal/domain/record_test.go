package domain

import (
	"encoding/json"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},
		{"SEVERE", LevelError},
		{"FATAL", LevelFatal},
		{" error ", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelError)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"ERROR"` {
		t.Errorf("Marshal = %s", data)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"WARNING"`), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l != LevelWarn {
		t.Errorf("Unmarshal = %v, want WARN", l)
	}
}

func TestLogRecordPredicates(t *testing.T) {
	tests := []struct {
		name     string
		rec      LogRecord
		isError  bool
		hasTrace bool
		hasLoc   bool
	}{
		{
			name:    "info record",
			rec:     LogRecord{Level: LevelInfo, Message: "ok"},
			isError: false,
		},
		{
			name:    "error with trace",
			rec:     LogRecord{Level: LevelError, StackTrace: "java.lang.Error\n\tat a.B.c(B.java:1)"},
			isError: true, hasTrace: true,
		},
		{
			name:    "fatal with location",
			rec:     LogRecord{Level: LevelFatal, ClassName: "com.example.A", MethodName: "b"},
			isError: true,
			hasLoc:  true,
		},
		{
			name:    "whitespace trace does not count",
			rec:     LogRecord{Level: LevelError, StackTrace: "  \n "},
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsError(); got != tt.isError {
				t.Errorf("IsError = %v, want %v", got, tt.isError)
			}
			if got := tt.rec.HasStackTrace(); got != tt.hasTrace {
				t.Errorf("HasStackTrace = %v, want %v", got, tt.hasTrace)
			}
			if got := tt.rec.HasLocation(); got != tt.hasLoc {
				t.Errorf("HasLocation = %v, want %v", got, tt.hasLoc)
			}
		})
	}
}
