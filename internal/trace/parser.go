// Package trace recovers structured exception trees from raw stack-trace
// text. Parsing is best-effort: malformed input degrades to a partial
// result, it never fails outright.
package trace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/user/log-triage/internal/domain"
)

// maxCauseDepth bounds the caused-by chain. Pathological or repetitive
// input is truncated at this depth rather than recursed into unboundedly.
const maxCauseDepth = 50

var (
	// "java.lang.NullPointerException: message"
	exceptionRe = regexp.MustCompile(`^([\w.$]+(?:Exception|Error|Throwable))(?::\s*(.*))?$`)

	// "at com.example.Class.method(File.java:123)"
	frameRe = regexp.MustCompile(`^\s*at\s+([\w.$]+)\.([\w$<>]+)\(([^)]+)\)$`)

	// "File.java:123"
	locationRe = regexp.MustCompile(`^([\w]+\.\w+):(\d+)$`)

	// "Caused by: com.example.SomeException: message"
	causedByRe = regexp.MustCompile(`^Caused by:\s*(.+)$`)

	// "... 12 more"
	moreRe = regexp.MustCompile(`^\s*\.\.\.\s*(\d+)\s+more\s*$`)
)

// Parser turns raw exception text, or an already-structured throwable-like
// input, into a tree of domain.ParsedTrace nodes.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses stack-trace text. Returns (nil, false) on empty input.
func (p *Parser) Parse(text string) (*domain.ParsedTrace, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	lines := splitLines(text)
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	parsed, _ := p.parseLines(lines, start, 0)
	if parsed == nil {
		return nil, false
	}
	return parsed, true
}

// ThrowableInput is the structured alternative to raw text: a pre-parsed
// frame list plus an optional cause, as produced by an SDK-side enricher.
type ThrowableInput struct {
	ExceptionClass string
	Message        string
	Frames         []domain.StackFrame
	Cause          *ThrowableInput
}

// ParseThrowable converts a structured input without any text parsing.
// The caused-by chain is capped at the same depth as text parsing.
func (p *Parser) ParseThrowable(in *ThrowableInput) (*domain.ParsedTrace, bool) {
	if in == nil {
		return nil, false
	}
	return p.convertThrowable(in, 0), true
}

func (p *Parser) convertThrowable(in *ThrowableInput, depth int) *domain.ParsedTrace {
	frames := make([]domain.StackFrame, len(in.Frames))
	copy(frames, in.Frames)
	t := &domain.ParsedTrace{
		ExceptionClass: in.ExceptionClass,
		Message:        in.Message,
		Frames:         frames,
	}
	if in.Cause != nil && depth < maxCauseDepth {
		t.CausedBy = p.convertThrowable(in.Cause, depth+1)
	}
	return t
}

// ExceptionLine returns the first non-empty line of the trace text.
func ExceptionLine(text string) string {
	if text == "" {
		return ""
	}
	if i := strings.IndexByte(text, '\n'); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}

// ExceptionClass extracts the exception type name from trace text, falling
// back to a colon split when the header pattern does not match.
func ExceptionClass(text string) string {
	firstLine := ExceptionLine(text)
	if firstLine == "" {
		return ""
	}
	if m := exceptionRe.FindStringSubmatch(firstLine); m != nil {
		return m[1]
	}
	if i := strings.IndexByte(firstLine, ':'); i > 0 {
		return strings.TrimSpace(firstLine[:i])
	}
	return firstLine
}

// parseLines parses one exception node starting at start, returning the node
// and the index of the first unconsumed line.
func (p *Parser) parseLines(lines []string, start, depth int) (*domain.ParsedTrace, int) {
	if start >= len(lines) {
		return nil, start
	}

	header := strings.TrimSpace(lines[start])
	class, message := parseHeader(header)
	cur := start + 1

	var frames []domain.StackFrame
	var causedBy *domain.ParsedTrace

	for cur < len(lines) {
		line := lines[cur]

		if m := causedByRe.FindStringSubmatch(line); m != nil {
			if depth+1 >= maxCauseDepth {
				// Truncate pathological chains; the current node ends here.
				cur = len(lines)
				break
			}
			// Re-seat the remaining lines so the caused-by header is parsed
			// as an exception header by the nested call.
			rest := append([]string{m[1]}, lines[cur+1:]...)
			nested, consumed := p.parseLines(rest, 0, depth+1)
			causedBy = nested
			cur = cur + consumed
			break
		}

		if moreRe.MatchString(line) {
			cur++
			continue
		}

		frame, ok := parseFrame(line)
		if !ok {
			// Not a frame: end of this exception's frame section.
			break
		}
		frames = append(frames, frame)
		cur++
	}

	return &domain.ParsedTrace{
		ExceptionClass: class,
		Message:        message,
		Frames:         frames,
		CausedBy:       causedBy,
	}, cur
}

func parseHeader(line string) (class, message string) {
	if m := exceptionRe.FindStringSubmatch(line); m != nil {
		return m[1], m[2]
	}
	if i := strings.IndexByte(line, ':'); i > 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

func parseFrame(line string) (domain.StackFrame, bool) {
	m := frameRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.StackFrame{}, false
	}

	frame := domain.StackFrame{
		ClassName:  m[1],
		MethodName: m[2],
		Line:       -1,
	}

	switch location := m[3]; location {
	case "Native Method":
		frame.Native = true
	case "Unknown Source":
		// No file information.
	default:
		if lm := locationRe.FindStringSubmatch(location); lm != nil {
			frame.FileName = lm[1]
			if n, err := strconv.Atoi(lm[2]); err == nil {
				frame.Line = n
			}
		} else {
			// File name without a line number.
			frame.FileName = location
		}
	}

	return frame, true
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
