package domain

import "testing"

func TestStackFrameHelpers(t *testing.T) {
	f := StackFrame{ClassName: "com.example.OrderService", MethodName: "process", FileName: "OrderService.java", Line: 42}

	if got := f.Fingerprint(); got != "com.example.OrderService.process:42" {
		t.Errorf("Fingerprint = %q", got)
	}
	if got := f.SimpleClassName(); got != "OrderService" {
		t.Errorf("SimpleClassName = %q", got)
	}
	if got := f.PackageName(); got != "com.example" {
		t.Errorf("PackageName = %q", got)
	}
	if !f.HasSourceInfo() {
		t.Error("HasSourceInfo = false")
	}

	bare := StackFrame{ClassName: "Toplevel", MethodName: "run", Line: -1}
	if got := bare.SimpleClassName(); got != "Toplevel" {
		t.Errorf("SimpleClassName = %q", got)
	}
	if got := bare.PackageName(); got != "" {
		t.Errorf("PackageName = %q", got)
	}
	if bare.HasSourceInfo() {
		t.Error("frame without file should have no source info")
	}
}

func TestStackFrameString(t *testing.T) {
	tests := []struct {
		name  string
		frame StackFrame
		want  string
	}{
		{
			"with source",
			StackFrame{ClassName: "com.example.A", MethodName: "b", FileName: "A.java", Line: 7},
			"com.example.A.b(A.java:7)",
		},
		{
			"native",
			StackFrame{ClassName: "java.lang.System", MethodName: "arraycopy", Line: -1, Native: true},
			"java.lang.System.arraycopy(Native Method)",
		},
		{
			"unknown source",
			StackFrame{ClassName: "com.example.Gen", MethodName: "call", Line: -1},
			"com.example.Gen.call(Unknown Source)",
		},
		{
			"file without line",
			StackFrame{ClassName: "com.example.Dyn", MethodName: "eval", FileName: "Dyn.java", Line: -1},
			"com.example.Dyn.eval(Dyn.java)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.String(); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsedTraceChain(t *testing.T) {
	inner := &ParsedTrace{ExceptionClass: "java.lang.NullPointerException", Message: "boom"}
	mid := &ParsedTrace{ExceptionClass: "java.sql.SQLException", CausedBy: inner}
	outer := &ParsedTrace{
		ExceptionClass: "java.lang.RuntimeException",
		Message:        "wrapper",
		Frames:         []StackFrame{{ClassName: "com.example.A", MethodName: "b", FileName: "A.java", Line: 1}},
		CausedBy:       mid,
	}

	if got := outer.Depth(); got != 3 {
		t.Errorf("Depth = %d, want 3", got)
	}
	if got := outer.RootCause(); got != inner {
		t.Errorf("RootCause = %+v", got)
	}
	if top, ok := outer.TopFrame(); !ok || top.MethodName != "b" {
		t.Errorf("TopFrame = %+v, %v", top, ok)
	}
	if _, ok := inner.TopFrame(); ok {
		t.Error("frameless trace should have no top frame")
	}
}
