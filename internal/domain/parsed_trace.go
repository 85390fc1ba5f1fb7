package domain

import "strings"

// ParsedTrace is the structured form of one exception in a stack trace,
// linked to its cause through CausedBy. The chain is an owned, singly-linked,
// finite sequence rooted at the outermost exception.
type ParsedTrace struct {
	ExceptionClass string       `json:"exception_class"`
	Message        string       `json:"message,omitempty"`
	Frames         []StackFrame `json:"frames"`
	CausedBy       *ParsedTrace `json:"caused_by,omitempty"`
}

// TopFrame returns the first frame (top of stack), or an empty frame and
// false when the trace has no frames.
func (t *ParsedTrace) TopFrame() (StackFrame, bool) {
	if len(t.Frames) == 0 {
		return StackFrame{}, false
	}
	return t.Frames[0], true
}

// RootCause walks the caused-by chain to the innermost exception.
func (t *ParsedTrace) RootCause() *ParsedTrace {
	cur := t
	for cur.CausedBy != nil {
		cur = cur.CausedBy
	}
	return cur
}

// Depth returns the length of the caused-by chain, counting this node.
func (t *ParsedTrace) Depth() int {
	depth := 0
	for cur := t; cur != nil; cur = cur.CausedBy {
		depth++
	}
	return depth
}

func (t *ParsedTrace) String() string {
	var b strings.Builder
	for cur, first := t, true; cur != nil; cur, first = cur.CausedBy, false {
		if !first {
			b.WriteString("Caused by: ")
		}
		b.WriteString(cur.ExceptionClass)
		if cur.Message != "" {
			b.WriteString(": ")
			b.WriteString(cur.Message)
		}
		b.WriteByte('\n')
		for _, f := range cur.Frames {
			b.WriteString("\tat ")
			b.WriteString(f.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
