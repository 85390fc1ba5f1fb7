package trace

import (
	"fmt"
	"strings"
	"testing"

	"github.com/user/log-triage/internal/domain"
)

const nestedTrace = `java.lang.RuntimeException: wrapper
	at com.example.Service.run(Service.java:42)
	at com.example.Main.main(Main.java:10)
Caused by: java.lang.NullPointerException: boom
	at com.example.Repo.load(Repo.java:77)
	... 2 more`

func TestParse(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name          string
		input         string
		wantOK        bool
		wantClass     string
		wantMessage   string
		wantFrames    int
		wantCauseDesc int
	}{
		{
			name:          "simple trace",
			input:         "java.lang.NullPointerException: boom\n\tat com.example.Repo.load(Repo.java:77)",
			wantOK:        true,
			wantClass:     "java.lang.NullPointerException",
			wantMessage:   "boom",
			wantFrames:    1,
			wantCauseDesc: 0,
		},
		{
			name:          "nested trace with elision",
			input:         nestedTrace,
			wantOK:        true,
			wantClass:     "java.lang.RuntimeException",
			wantMessage:   "wrapper",
			wantFrames:    2,
			wantCauseDesc: 1,
		},
		{
			name:          "header without message",
			input:         "java.io.IOException\n\tat com.example.Net.send(Net.java:5)",
			wantOK:        true,
			wantClass:     "java.io.IOException",
			wantMessage:   "",
			wantFrames:    1,
			wantCauseDesc: 0,
		},
		{
			name:          "non-conventional header falls back to colon split",
			input:         "com.example.WeirdFailure: it broke\n\tat com.example.A.b(A.java:1)",
			wantOK:        true,
			wantClass:     "com.example.WeirdFailure",
			wantMessage:   "it broke",
			wantFrames:    1,
			wantCauseDesc: 0,
		},
		{
			name:          "leading blank lines skipped",
			input:         "\n\njava.lang.IllegalStateException: late\n\tat com.example.A.b(A.java:1)",
			wantOK:        true,
			wantClass:     "java.lang.IllegalStateException",
			wantMessage:   "late",
			wantFrames:    1,
			wantCauseDesc: 0,
		},
		{
			name:   "empty input",
			input:  "   \n  ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ExceptionClass != tt.wantClass {
				t.Errorf("ExceptionClass = %q, want %q", got.ExceptionClass, tt.wantClass)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if len(got.Frames) != tt.wantFrames {
				t.Errorf("got %d frames, want %d", len(got.Frames), tt.wantFrames)
			}
			if got.Depth()-1 != tt.wantCauseDesc {
				t.Errorf("cause chain length = %d, want %d", got.Depth()-1, tt.wantCauseDesc)
			}
		})
	}
}

func TestParseFrameVariants(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
		want   domain.StackFrame
	}{
		{
			name:   "file and line",
			line:   "\tat com.example.Service.run(Service.java:42)",
			wantOK: true,
			want: domain.StackFrame{
				ClassName:  "com.example.Service",
				MethodName: "run",
				FileName:   "Service.java",
				Line:       42,
			},
		},
		{
			name:   "native method",
			line:   "\tat java.lang.System.arraycopy(Native Method)",
			wantOK: true,
			want: domain.StackFrame{
				ClassName:  "java.lang.System",
				MethodName: "arraycopy",
				Line:       -1,
				Native:     true,
			},
		},
		{
			name:   "unknown source",
			line:   "\tat com.example.Generated.call(Unknown Source)",
			wantOK: true,
			want: domain.StackFrame{
				ClassName:  "com.example.Generated",
				MethodName: "call",
				Line:       -1,
			},
		},
		{
			name:   "inner class and constructor",
			line:   "\tat com.example.Outer$Inner.<init>(Outer.java:9)",
			wantOK: true,
			want: domain.StackFrame{
				ClassName:  "com.example.Outer$Inner",
				MethodName: "<init>",
				FileName:   "Outer.java",
				Line:       9,
			},
		},
		{
			name:   "file without line",
			line:   "\tat com.example.Dyn.eval(Dyn.java)",
			wantOK: true,
			want: domain.StackFrame{
				ClassName:  "com.example.Dyn",
				MethodName: "eval",
				FileName:   "Dyn.java",
				Line:       -1,
			},
		},
		{
			name:   "not a frame",
			line:   "some log noise",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFrame(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseFrame ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseFrame = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	// A synthetic trace with N frames per level and a cause chain of depth D
	// must come back with exactly the same shape.
	const nFrames, depth = 7, 4

	var sb strings.Builder
	for d := 0; d < depth; d++ {
		if d > 0 {
			fmt.Fprintf(&sb, "Caused by: ")
		}
		fmt.Fprintf(&sb, "com.example.Level%dException: level %d\n", d, d)
		for f := 0; f < nFrames; f++ {
			fmt.Fprintf(&sb, "\tat com.example.Class%d.method%d(Class%d.java:%d)\n", d, f, d, f+1)
		}
	}

	parsed, ok := NewParser().Parse(sb.String())
	if !ok {
		t.Fatal("Parse failed on synthetic trace")
	}
	if got := parsed.Depth(); got != depth {
		t.Fatalf("Depth = %d, want %d", got, depth)
	}
	node := parsed
	for d := 0; d < depth; d++ {
		wantClass := fmt.Sprintf("com.example.Level%dException", d)
		if node.ExceptionClass != wantClass {
			t.Errorf("level %d class = %q, want %q", d, node.ExceptionClass, wantClass)
		}
		if len(node.Frames) != nFrames {
			t.Errorf("level %d has %d frames, want %d", d, len(node.Frames), nFrames)
		}
		node = node.CausedBy
	}
	root := parsed.RootCause()
	if want := fmt.Sprintf("com.example.Level%dException", depth-1); root.ExceptionClass != want {
		t.Errorf("RootCause = %q, want %q", root.ExceptionClass, want)
	}
}

func TestParseCauseDepthCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("com.example.E0Exception: start\n\tat com.example.C.m(C.java:1)\n")
	for d := 1; d < maxCauseDepth+20; d++ {
		fmt.Fprintf(&sb, "Caused by: com.example.E%dException: deep\n\tat com.example.C.m(C.java:1)\n", d)
	}

	parsed, ok := NewParser().Parse(sb.String())
	if !ok {
		t.Fatal("Parse failed")
	}
	if got := parsed.Depth(); got > maxCauseDepth {
		t.Errorf("Depth = %d, exceeds cap %d", got, maxCauseDepth)
	}
}

func TestParseThrowable(t *testing.T) {
	p := NewParser()

	if _, ok := p.ParseThrowable(nil); ok {
		t.Error("ParseThrowable(nil) should report not ok")
	}

	in := &ThrowableInput{
		ExceptionClass: "java.lang.IllegalStateException",
		Message:        "outer",
		Frames: []domain.StackFrame{
			{ClassName: "com.example.A", MethodName: "b", FileName: "A.java", Line: 3},
		},
		Cause: &ThrowableInput{
			ExceptionClass: "java.lang.NullPointerException",
			Message:        "inner",
		},
	}
	got, ok := p.ParseThrowable(in)
	if !ok {
		t.Fatal("ParseThrowable failed")
	}
	if got.ExceptionClass != in.ExceptionClass || got.Message != in.Message {
		t.Errorf("header = %q/%q, want %q/%q", got.ExceptionClass, got.Message, in.ExceptionClass, in.Message)
	}
	if got.CausedBy == nil || got.CausedBy.ExceptionClass != "java.lang.NullPointerException" {
		t.Errorf("cause not converted: %+v", got.CausedBy)
	}

	// Mutating the input frames must not affect the parsed result.
	in.Frames[0].Line = 999
	if got.Frames[0].Line != 3 {
		t.Error("parsed frames share backing array with input")
	}
}

func TestExceptionClass(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"standard header", "java.lang.NullPointerException: boom\n\tat a.B.c(B.java:1)", "java.lang.NullPointerException"},
		{"no message", "java.io.IOException", "java.io.IOException"},
		{"colon fallback", "weird failure: details here", "weird failure"},
		{"no colon", "just text", "just text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExceptionClass(tt.input); got != tt.want {
				t.Errorf("ExceptionClass(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
