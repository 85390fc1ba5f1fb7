package fingerprint

import (
	"regexp"
	"strings"
)

// The substitutions run in this order on the evolving string: later
// patterns must not re-match text already replaced by earlier placeholders
// (e.g. the digit runs inside a UUID).
var normalizeSteps = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`), "<UUID>"},
	{regexp.MustCompile(`\b\d{6,}\b`), "<ID>"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`), "<TIMESTAMP>"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), "<IP>"},
	{regexp.MustCompile(`[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}`), "<EMAIL>"},
	{regexp.MustCompile(`"[^"]+"`), `"<STRING>"`},
	{regexp.MustCompile(`'[^']+'`), "'<STRING>'"},
	{regexp.MustCompile(`\b\d+\b`), "<NUM>"},
}

// NormalizeMessage turns a free-text message into a template by replacing
// variable parts (UUIDs, IDs, timestamps, IPs, emails, quoted strings,
// numbers) with placeholders.
func NormalizeMessage(message string) string {
	if message == "" {
		return ""
	}
	normalized := message
	for _, step := range normalizeSteps {
		normalized = step.re.ReplaceAllString(normalized, step.placeholder)
	}
	return strings.TrimSpace(normalized)
}
