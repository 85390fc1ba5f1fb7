package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Level is the severity level of a log record.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// ParseLevel converts a level string to a Level. Unknown or empty strings
// map to INFO. "WARNING" and "SEVERE" are accepted as aliases.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "SEVERE":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLevel(s)
	return nil
}

// LogRecord is the canonical structure of a single log event flowing through
// the triage pipeline. It is created by the ingestion layer and treated as
// immutable once enriched.
type LogRecord struct {
	ID         string    `json:"record_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at,omitempty"`
	Level      Level     `json:"level"`
	Logger     string    `json:"logger,omitempty"`
	Message    string    `json:"message"`
	StackTrace string    `json:"stack_trace,omitempty"`
	ClassName  string    `json:"class_name,omitempty"`
	MethodName string    `json:"method_name,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	LineNumber int       `json:"line_number,omitempty"`
	TraceID    string    `json:"trace_id,omitempty"`
	ThreadName string    `json:"thread_name,omitempty"`

	// StreamMessageID is the buffer-assigned message id, used for
	// acknowledgement. Not marshalled to sinks.
	StreamMessageID string `json:"-"`
}

// IsError reports whether the record qualifies for error triage.
func (r LogRecord) IsError() bool {
	return r.Level >= LevelError
}

// HasStackTrace reports whether the record carries raw stack-trace text.
func (r LogRecord) HasStackTrace() bool {
	return strings.TrimSpace(r.StackTrace) != ""
}

// HasLocation reports whether the record carries resolved location fields.
func (r LogRecord) HasLocation() bool {
	return r.ClassName != "" || r.MethodName != ""
}
