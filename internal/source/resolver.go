// Package source locates source files for stack-trace locations and
// extracts bounded code windows around a target line.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/user/log-triage/internal/domain"
)

// ErrNotFound reports that a source file or target line could not be
// located. Distinct from I/O failures, which are returned as-is.
var ErrNotFound = errors.New("source: not found")

// DefaultContextLines is the default half-width of the extracted window.
const DefaultContextLines = 10

var (
	methodRe = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract|synchronized|native)\s+)*` +
		`(?:<[^>]+>\s*)?` + // generic type parameters
		`(\w+(?:<[^>]+>)?(?:\[\])?)\s+` + // return type
		`(\w+)\s*\(`) // method name

	classRe = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract)\s+)*` +
		`(class|interface|enum|record)\s+(\w+)`)

	importRe = regexp.MustCompile(`^\s*import\s+(?:static\s+)?[\w.]+(?:\.\*)?;\s*$`)

	fieldRe = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|volatile|transient)\s+)+` +
		`\w+(?:<[^>]+>)?(?:\[\])?\s+\w+\s*[;=]`)
)

// Resolver finds source files under configured roots and extracts code
// context. It performs synchronous reads with no caching; concurrent use
// is safe but redundant.
type Resolver struct {
	roots        []string
	contextLines int
	logger       *slog.Logger
}

// NewResolver creates a Resolver over the given source roots.
// contextLines <= 0 uses DefaultContextLines.
func NewResolver(roots []string, contextLines int, logger *slog.Logger) *Resolver {
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	return &Resolver{
		roots:        roots,
		contextLines: contextLines,
		logger:       logger.With("component", "source_resolver"),
	}
}

// ResolveByClass extracts code context for a fully qualified class name and
// 1-based line number. Inner-class suffixes ($Inner) map to the outer file.
func (r *Resolver) ResolveByClass(className string, line int) (*domain.CodeContext, error) {
	path, err := r.FindByClass(className)
	if err != nil {
		return nil, err
	}
	return r.ResolveFile(path, line)
}

// ResolveByFileName extracts code context for a simple file name, found by
// a depth-first search under the roots.
func (r *Resolver) ResolveByFileName(fileName string, line int) (*domain.CodeContext, error) {
	path, err := r.FindByFileName(fileName)
	if err != nil {
		return nil, err
	}
	return r.ResolveFile(path, line)
}

// FindByClass converts a dotted class name to a relative path and checks
// each root in order; first match wins.
func (r *Resolver) FindByClass(className string) (string, error) {
	if className == "" {
		return "", ErrNotFound
	}

	base := className
	if i := strings.IndexByte(base, '$'); i >= 0 {
		base = base[:i]
	}
	rel := filepath.FromSlash(strings.ReplaceAll(base, ".", "/") + ".java")

	for _, root := range r.roots {
		candidate := filepath.Join(root, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	r.logger.Debug("source file not found for class", "class", className)
	return "", ErrNotFound
}

// FindByFileName walks each root depth-first looking for a regular file
// with the given base name.
func (r *Resolver) FindByFileName(fileName string) (string, error) {
	if fileName == "" {
		return "", ErrNotFound
	}

	for _, root := range r.roots {
		var found string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && d.Name() == fileName {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			r.logger.Warn("error searching source root", "root", root, "error", err)
			continue
		}
		if found != "" {
			return found, nil
		}
	}

	r.logger.Debug("source file not found", "file", fileName)
	return "", ErrNotFound
}

// ResolveFile extracts code context from a specific file at a 1-based line.
// A line outside [1, lineCount] returns ErrNotFound; read failures are
// returned as I/O errors.
func (r *Resolver) ResolveFile(path string, line int) (*domain.CodeContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file %s: %w", path, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	// A trailing newline yields one phantom empty element.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	if line < 1 || line > len(lines) {
		r.logger.Debug("target line out of range", "file", path, "line", line, "total", len(lines))
		return nil, ErrNotFound
	}

	ctx := &domain.CodeContext{
		FilePath:   path,
		TargetLine: line,
		Imports:    extractImports(lines),
		ClassName:  enclosingClass(lines, line),
	}

	if name, start, end, ok := enclosingMethod(lines, line); ok {
		ctx.MethodName = name
		ctx.MethodBody = joinLines(lines, start, end)
	}

	start := max(1, line-r.contextLines)
	end := min(len(lines), line+r.contextLines)
	ctx.Lines = append([]string(nil), lines[start-1:end]...)
	ctx.StartLine = start
	ctx.EndLine = end

	ctx.Fields = classFields(lines, ctx.ClassName)

	return ctx, nil
}

// extractImports collects import statements, stopping at the first class
// declaration.
func extractImports(lines []string) []string {
	var imports []string
	for _, line := range lines {
		if importRe.MatchString(line) {
			imports = append(imports, strings.TrimSpace(line))
		}
		if classRe.MatchString(line) {
			break
		}
	}
	return imports
}

// enclosingClass returns the nearest class/interface/enum/record declared at
// or before the target line (last declaration wins).
func enclosingClass(lines []string, target int) string {
	var current string
	for i := 0; i < len(lines) && i < target; i++ {
		if m := classRe.FindStringSubmatch(lines[i]); m != nil {
			current = m[2]
		}
	}
	return current
}

// enclosingMethod scans backward from the target line with a running brace
// balance; a method-declaration line is accepted only when the balance
// indicates the target sits in that method's own scope, not a deeper
// nested block. Returns 1-based start/end lines of the method body.
func enclosingMethod(lines []string, target int) (name string, start, end int, ok bool) {
	balance := 0
	startIdx := -1

	for i := target - 1; i >= 0; i-- {
		line := lines[i]
		for _, c := range line {
			switch c {
			case '}':
				balance++
			case '{':
				balance--
			}
		}

		if m := methodRe.FindStringSubmatch(line); m != nil && balance <= 0 {
			name = m[2]
			startIdx = i
			break
		}
	}

	if startIdx < 0 {
		return "", 0, 0, false
	}

	// Forward scan from the declaration until the balance returns to zero
	// after having gone positive.
	balance = 0
	opened := false
	endIdx := len(lines) - 1
	for i := startIdx; i < len(lines); i++ {
		for _, c := range lines[i] {
			switch c {
			case '{':
				balance++
				opened = true
			case '}':
				balance--
			}
		}
		if opened && balance == 0 {
			endIdx = i
			break
		}
	}

	return name, startIdx + 1, endIdx + 1, true
}

// classFields collects declarations at the class's own brace depth
// (directly inside the class body, not nested blocks or methods).
func classFields(lines []string, className string) []string {
	if className == "" {
		return nil
	}

	var fields []string
	inClass := false
	depth := 0

	for _, line := range lines {
		if !inClass {
			if m := classRe.FindStringSubmatch(line); m != nil && m[2] == className {
				inClass = true
			}
		}
		if !inClass {
			continue
		}

		for _, c := range line {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
			}
		}

		if depth == 1 && fieldRe.MatchString(line) {
			fields = append(fields, strings.TrimSpace(line))
		}

		if depth == 0 && strings.ContainsRune(line, '}') {
			break
		}
	}

	return fields
}

func joinLines(lines []string, start, end int) string {
	var b strings.Builder
	for i := start - 1; i < end && i < len(lines); i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}
