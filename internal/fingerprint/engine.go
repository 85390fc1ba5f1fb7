package fingerprint

import (
	"strconv"
	"strings"

	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/trace"
)

// DefaultFrameCount is how many leading user frames contribute to a
// trace-based fingerprint.
const DefaultFrameCount = 5

// Engine computes grouping fingerprints for log records. The three tiers
// (trace frames, explicit location, normalized message) are mutually
// exclusive fallbacks tried in order.
type Engine struct {
	parser     *trace.Parser
	classifier *Classifier
	frameCount int
}

// NewEngine creates an Engine. A nil classifier uses the default framework
// prefixes; frameCount <= 0 uses DefaultFrameCount.
func NewEngine(parser *trace.Parser, classifier *Classifier, frameCount int) *Engine {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if frameCount <= 0 {
		frameCount = DefaultFrameCount
	}
	return &Engine{
		parser:     parser,
		classifier: classifier,
		frameCount: frameCount,
	}
}

// Classifier returns the engine's frame classifier.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Fingerprint derives the grouping key for a record. It is deterministic
// and never returns an empty string for a record with a non-empty message.
func (e *Engine) Fingerprint(rec domain.LogRecord) string {
	if rec.HasStackTrace() {
		if parsed, ok := e.parser.Parse(rec.StackTrace); ok {
			if fp, ok := e.TraceFingerprint(parsed); ok {
				return fp
			}
		}
	}

	var b strings.Builder
	if rec.ClassName != "" {
		b.WriteString(rec.ClassName)
	}
	if rec.MethodName != "" {
		b.WriteByte('.')
		b.WriteString(rec.MethodName)
	}
	if rec.LineNumber > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(rec.LineNumber))
	}
	if b.Len() > 0 {
		return b.String()
	}

	return NormalizeMessage(rec.Message)
}

// TraceFingerprint builds "type|class.method:line|..." from the top user
// frames of a parsed trace. Returns false when the trace has no user
// frames, signalling the caller to fall through to the next tier.
func (e *Engine) TraceFingerprint(t *domain.ParsedTrace) (string, bool) {
	userFrames := e.TopUserFrames(t, e.frameCount)
	if len(userFrames) == 0 {
		return "", false
	}

	var b strings.Builder
	if t.ExceptionClass != "" {
		b.WriteString(t.ExceptionClass)
	} else {
		b.WriteString("Unknown")
	}
	for _, f := range userFrames {
		b.WriteByte('|')
		b.WriteString(f.Fingerprint())
	}
	return b.String(), true
}

// UserFrames returns the trace's non-framework frames in original order.
func (e *Engine) UserFrames(t *domain.ParsedTrace) []domain.StackFrame {
	var out []domain.StackFrame
	for _, f := range t.Frames {
		if !e.classifier.IsFrameworkFrame(f.ClassName) {
			out = append(out, f)
		}
	}
	return out
}

// TopUserFrames returns up to n leading user frames.
func (e *Engine) TopUserFrames(t *domain.ParsedTrace, n int) []domain.StackFrame {
	frames := e.UserFrames(t)
	if len(frames) > n {
		frames = frames[:n]
	}
	return frames
}

// FirstUserFrame returns the first non-framework frame of the trace.
func (e *Engine) FirstUserFrame(t *domain.ParsedTrace) (domain.StackFrame, bool) {
	for _, f := range t.Frames {
		if !e.classifier.IsFrameworkFrame(f.ClassName) {
			return f, true
		}
	}
	return domain.StackFrame{}, false
}
