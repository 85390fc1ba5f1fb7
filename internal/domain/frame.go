package domain

import (
	"fmt"
	"strings"
)

// StackFrame is a single frame of a parsed stack trace. Line is -1 when
// unknown. Identity for clustering purposes is (class, method, line).
type StackFrame struct {
	ClassName  string `json:"class_name"`
	MethodName string `json:"method_name"`
	FileName   string `json:"file_name,omitempty"`
	Line       int    `json:"line"`
	Native     bool   `json:"native,omitempty"`
}

// Fingerprint returns the frame's contribution to a trace fingerprint.
func (f StackFrame) Fingerprint() string {
	return fmt.Sprintf("%s.%s:%d", f.ClassName, f.MethodName, f.Line)
}

// SimpleClassName returns the class name without its package prefix.
func (f StackFrame) SimpleClassName() string {
	if i := strings.LastIndex(f.ClassName, "."); i >= 0 {
		return f.ClassName[i+1:]
	}
	return f.ClassName
}

// PackageName returns the package portion of the class name, or "".
func (f StackFrame) PackageName() string {
	if i := strings.LastIndex(f.ClassName, "."); i >= 0 {
		return f.ClassName[:i]
	}
	return ""
}

// HasSourceInfo reports whether the frame points at a usable file and line.
func (f StackFrame) HasSourceInfo() bool {
	return f.FileName != "" && f.Line > 0
}

func (f StackFrame) String() string {
	var b strings.Builder
	b.WriteString(f.ClassName)
	b.WriteByte('.')
	b.WriteString(f.MethodName)
	switch {
	case f.Native:
		b.WriteString("(Native Method)")
	case f.FileName != "" && f.Line >= 0:
		fmt.Fprintf(&b, "(%s:%d)", f.FileName, f.Line)
	case f.FileName != "":
		fmt.Fprintf(&b, "(%s)", f.FileName)
	default:
		b.WriteString("(Unknown Source)")
	}
	return b.String()
}
