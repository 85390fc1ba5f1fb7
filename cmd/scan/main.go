// Command scan runs the triage pipeline over a log file in one shot:
// parse NDJSON records, cluster errors, persist to a local SQLite store,
// resolve code context for the top clusters, and render a report.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/user/log-triage/internal/adapter/report"
	"github.com/user/log-triage/internal/adapter/repository/sqlite"
	"github.com/user/log-triage/internal/cluster"
	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/fingerprint"
	"github.com/user/log-triage/internal/pkg/config"
	"github.com/user/log-triage/internal/pkg/logger"
	"github.com/user/log-triage/internal/source"
	"github.com/user/log-triage/internal/trace"
	"github.com/user/log-triage/internal/usecase"
)

const maxContextClusters = 5

func main() {
	var (
		logsPath   = flag.String("logs", "", "path to NDJSON log file (required)")
		configPath = flag.String("config", "triage.yaml", "path to triage config file")
		outPath    = flag.String("out", "", "report output path (default: stdout)")
		format     = flag.String("format", "", "report format: markdown or json (overrides config)")
		merge      = flag.Bool("merge", true, "merge near-duplicate clusters")
		ctxLines   = flag.Int("context", 0, "code context lines around the target (overrides config)")
		logLevel   = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log := logger.New(*logLevel)

	if *logsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scan -logs <file> [-config triage.yaml] [-out report.md]")
		os.Exit(2)
	}

	if err := run(*logsPath, *configPath, *outPath, *format, *merge, *ctxLines, log); err != nil {
		log.Error("scan failed", "error", err)
		fmt.Fprintln(os.Stderr, "scan failed:", err)
		os.Exit(1)
	}
}

func run(logsPath, configPath, outPath, format string, merge bool, ctxLines int, log *slog.Logger) error {
	ctx := context.Background()

	tf, err := config.LoadTriageFile(configPath)
	if err != nil {
		return err
	}
	if format == "" {
		format = tf.ReportFormat
	}
	if ctxLines > 0 {
		tf.ContextLines = ctxLines
	}

	records, err := readRecords(logsPath)
	if err != nil {
		return err
	}
	log.Info("loaded records", "count", len(records))

	// --- Pipeline ---
	parser := trace.NewParser()
	classifier := fingerprint.NewClassifier(prefixesOrDefault(tf.FrameworkPrefixes))
	engine := cluster.NewEngine(fingerprint.NewEngine(parser, classifier, fingerprint.DefaultFrameCount))
	var merger *cluster.Merger
	if merge {
		merger = cluster.NewMerger(cluster.DefaultSimilarityThreshold)
	}
	triage := usecase.NewTriageRecordsUseCase(engine, merger, log)

	clusters := triage.Triage(records)

	// --- Persist ---
	store, err := sqlite.Open(tf.DatabasePath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}
	if err := store.WriteClusters(ctx, clusters); err != nil {
		return fmt.Errorf("persisting clusters: %w", err)
	}

	// --- Code context for top clusters ---
	contexts := resolveContexts(clusters, tf, log)

	// --- Report ---
	// Level totals come from the store, so the report covers everything
	// accumulated in the database, not just this run's file.
	levelCounts, err := store.CountByLevel(ctx)
	if err != nil {
		return fmt.Errorf("counting records by level: %w", err)
	}
	data := buildReportData(records, levelCounts, clusters, contexts)

	var writer report.Writer
	switch format {
	case "json":
		writer = report.NewJSONWriter()
	case "markdown", "md":
		writer = report.NewMarkdownWriter()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}

	out, err := writer.Generate(data)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Println(out)
		return nil
	}
	return os.WriteFile(outPath, []byte(out), 0o644)
}

func readRecords(path string) ([]domain.LogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []domain.LogRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec domain.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing record at line %d: %w", lineNo, err)
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("%s#%d", path, lineNo)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

func resolveContexts(clusters []domain.ErrorCluster, tf *config.TriageFile, log *slog.Logger) map[string]*domain.CodeContext {
	if len(tf.SourceRoots) == 0 {
		return nil
	}

	resolver := source.NewResolver(tf.SourceRoots, tf.ContextLines, log)
	contexts := make(map[string]*domain.CodeContext)

	limit := len(clusters)
	if limit > maxContextClusters {
		limit = maxContextClusters
	}

	for i := 0; i < limit; i++ {
		c := &clusters[i]
		if !c.HasPrimaryLocation() || c.PrimaryLine < 1 {
			continue
		}

		var codeCtx *domain.CodeContext
		var err error
		if c.PrimaryClass != "" {
			codeCtx, err = resolver.ResolveByClass(c.PrimaryClass, c.PrimaryLine)
		} else {
			codeCtx, err = resolver.ResolveByFileName(c.PrimaryFile, c.PrimaryLine)
		}
		if err != nil {
			if !errors.Is(err, source.ErrNotFound) {
				log.Warn("failed to resolve code context", "cluster", c.ID, "error", err)
			}
			continue
		}
		contexts[c.ID] = codeCtx
	}

	return contexts
}

func buildReportData(records []domain.LogRecord, levelCounts map[string]int, clusters []domain.ErrorCluster, contexts map[string]*domain.CodeContext) *report.Data {
	data := &report.Data{
		GeneratedAt:  time.Now(),
		LevelCounts:  levelCounts,
		Clusters:     clusters,
		CodeContexts: contexts,
	}

	for level, n := range levelCounts {
		data.TotalRecords += n
		if level == domain.LevelError.String() || level == domain.LevelFatal.String() {
			data.ErrorRecords += n
		}
	}

	// The reporting period still reflects the records scanned in this run.
	for _, rec := range records {
		if data.PeriodStart.IsZero() || rec.Timestamp.Before(data.PeriodStart) {
			data.PeriodStart = rec.Timestamp
		}
		if rec.Timestamp.After(data.PeriodEnd) {
			data.PeriodEnd = rec.Timestamp
		}
	}

	return data
}

func prefixesOrDefault(prefixes []string) []string {
	if len(prefixes) == 0 {
		return nil // classifier falls back to defaults
	}
	return prefixes
}
