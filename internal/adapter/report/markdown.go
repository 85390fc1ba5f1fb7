package report

import (
	"fmt"
	"strings"

	"github.com/user/log-triage/internal/domain"
)

const (
	maxClustersShown = 20
	maxPatternLength = 100
	timestampLayout  = "2006-01-02 15:04:05 MST"
)

// MarkdownWriter renders a human-readable health report.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Generate renders the report.
func (w *MarkdownWriter) Generate(data *Data) (string, error) {
	var b strings.Builder

	b.WriteString("# Log Triage Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", data.GeneratedAt.Format(timestampLayout))
	if !data.PeriodStart.IsZero() && !data.PeriodEnd.IsZero() {
		fmt.Fprintf(&b, "**Period:** %s to %s\n",
			data.PeriodStart.Format(timestampLayout),
			data.PeriodEnd.Format(timestampLayout))
	}
	b.WriteString("\n")

	critical := data.CountBySeverity(domain.SeverityCritical)
	high := data.CountBySeverity(domain.SeverityHigh)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Records | %d |\n", data.TotalRecords)
	fmt.Fprintf(&b, "| Error Records | %d |\n", data.ErrorRecords)
	fmt.Fprintf(&b, "| Error Rate | %.2f%% |\n", data.ErrorRate())
	fmt.Fprintf(&b, "| Error Clusters | %d |\n", len(data.Clusters))
	fmt.Fprintf(&b, "| Critical | %d |\n", critical)
	fmt.Fprintf(&b, "| High | %d |\n\n", high)

	b.WriteString("### Health Status\n\n")
	switch {
	case critical > 0:
		b.WriteString("**CRITICAL** - Immediate attention required\n\n")
	case high > 0:
		b.WriteString("**WARNING** - High priority issues detected\n\n")
	case len(data.Clusters) > 0:
		b.WriteString("**ATTENTION** - Some errors detected\n\n")
	default:
		b.WriteString("**HEALTHY** - No significant issues\n\n")
	}

	if len(data.LevelCounts) > 0 {
		b.WriteString("## Level Distribution\n\n")
		b.WriteString("| Level | Count |\n")
		b.WriteString("|-------|-------|\n")
		for _, level := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"} {
			if n, ok := data.LevelCounts[level]; ok {
				fmt.Fprintf(&b, "| %s | %d |\n", level, n)
			}
		}
		b.WriteString("\n")
	}

	if len(data.Clusters) > 0 {
		b.WriteString("## Error Clusters\n\n")
		shown := len(data.Clusters)
		if shown > maxClustersShown {
			shown = maxClustersShown
		}

		for i := 0; i < shown; i++ {
			c := &data.Clusters[i]
			fmt.Fprintf(&b, "### %s [%s]\n\n", c.ID, c.Severity)
			if c.ExceptionClass != "" {
				fmt.Fprintf(&b, "**Exception:** `%s`\n\n", c.ExceptionClass)
			}
			fmt.Fprintf(&b, "- **Occurrences:** %d\n", c.OccurrenceCount)
			fmt.Fprintf(&b, "- **First Seen:** %s\n", c.FirstSeen.Format(timestampLayout))
			fmt.Fprintf(&b, "- **Last Seen:** %s\n", c.LastSeen.Format(timestampLayout))
			if loc := c.FullLocation(); loc != "" {
				fmt.Fprintf(&b, "- **Location:** `%s`\n", loc)
			}
			if c.MessagePattern != "" {
				fmt.Fprintf(&b, "- **Message:** %s\n", truncate(c.MessagePattern, maxPatternLength))
			}
			b.WriteString("\n")

			if ctx, ok := data.CodeContexts[c.ID]; ok && ctx != nil {
				fmt.Fprintf(&b, "**Code Context** (`%s:%d`", ctx.FilePath, ctx.TargetLine)
				if ctx.MethodName != "" {
					fmt.Fprintf(&b, ", method `%s`", ctx.MethodName)
				}
				b.WriteString("):\n\n```java\n")
				for _, line := range ctx.Lines {
					b.WriteString(line)
					b.WriteByte('\n')
				}
				b.WriteString("```\n\n")
			}
		}

		if rest := len(data.Clusters) - shown; rest > 0 {
			fmt.Fprintf(&b, "*... and %d more clusters*\n\n", rest)
		}
	}

	return b.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
