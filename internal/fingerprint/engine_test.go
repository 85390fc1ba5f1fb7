package fingerprint

import (
	"strings"
	"testing"

	"github.com/user/log-triage/internal/domain"
	"github.com/user/log-triage/internal/trace"
)

const userTrace = `java.lang.NullPointerException: boom
	at java.util.Optional.get(Optional.java:143)
	at com.example.OrderService.process(OrderService.java:42)
	at com.example.OrderController.submit(OrderController.java:18)
	at org.springframework.web.method.support.InvocableHandlerMethod.invoke(InvocableHandlerMethod.java:205)`

const frameworkOnlyTrace = `java.lang.IllegalStateException: pool closed
	at java.util.concurrent.FutureTask.run(FutureTask.java:266)
	at java.lang.Thread.run(Thread.java:748)`

func newTestEngine(frameCount int) *Engine {
	return NewEngine(trace.NewParser(), nil, frameCount)
}

func TestFingerprintTraceTier(t *testing.T) {
	e := newTestEngine(0)
	rec := domain.LogRecord{
		Level:      domain.LevelError,
		Message:    "order 123456 failed",
		StackTrace: userTrace,
	}

	got := e.Fingerprint(rec)
	want := "java.lang.NullPointerException|com.example.OrderService.process:42|com.example.OrderController.submit:18"
	if got != want {
		t.Errorf("Fingerprint = %q, want %q", got, want)
	}

	// Deterministic across calls.
	if again := e.Fingerprint(rec); again != got {
		t.Errorf("fingerprint unstable: %q vs %q", again, got)
	}
}

func TestFingerprintLocationTier(t *testing.T) {
	e := newTestEngine(0)

	tests := []struct {
		name string
		rec  domain.LogRecord
		want string
	}{
		{
			name: "class method and line",
			rec: domain.LogRecord{
				Message:    "boom",
				ClassName:  "com.example.OrderService",
				MethodName: "process",
				LineNumber: 42,
			},
			want: "com.example.OrderService.process:42",
		},
		{
			name: "class and method only",
			rec: domain.LogRecord{
				Message:    "boom",
				ClassName:  "com.example.OrderService",
				MethodName: "process",
			},
			want: "com.example.OrderService.process",
		},
		{
			name: "framework-only trace falls through to location",
			rec: domain.LogRecord{
				Message:    "boom",
				StackTrace: frameworkOnlyTrace,
				ClassName:  "com.example.Pool",
				MethodName: "borrow",
				LineNumber: 7,
			},
			want: "com.example.Pool.borrow:7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Fingerprint(tt.rec); got != tt.want {
				t.Errorf("Fingerprint = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprintMessageTier(t *testing.T) {
	e := newTestEngine(0)
	rec := domain.LogRecord{Message: "User 12345678 not found"}

	if got, want := e.Fingerprint(rec), "User <ID> not found"; got != want {
		t.Errorf("Fingerprint = %q, want %q", got, want)
	}

	// Records differing only in variable parts share a fingerprint.
	other := domain.LogRecord{Message: "User 99990000 not found"}
	if e.Fingerprint(rec) != e.Fingerprint(other) {
		t.Error("message-tier fingerprints diverge for same template")
	}
}

func TestTraceFingerprintFrameCap(t *testing.T) {
	e := newTestEngine(2)
	parsed, ok := trace.NewParser().Parse(userTrace)
	if !ok {
		t.Fatal("Parse failed")
	}

	fp, ok := e.TraceFingerprint(parsed)
	if !ok {
		t.Fatal("TraceFingerprint reported no user frames")
	}
	// Exception class plus at most 2 frames.
	if got := strings.Count(fp, "|"); got != 2 {
		t.Errorf("fingerprint has %d frame segments, want 2: %q", got, fp)
	}
}

func TestTraceFingerprintNoUserFrames(t *testing.T) {
	e := newTestEngine(0)
	parsed, ok := trace.NewParser().Parse(frameworkOnlyTrace)
	if !ok {
		t.Fatal("Parse failed")
	}
	if _, ok := e.TraceFingerprint(parsed); ok {
		t.Error("TraceFingerprint should report false without user frames")
	}
}

func TestUserFrameHelpers(t *testing.T) {
	e := newTestEngine(0)
	parsed, ok := trace.NewParser().Parse(userTrace)
	if !ok {
		t.Fatal("Parse failed")
	}

	frames := e.UserFrames(parsed)
	if len(frames) != 2 {
		t.Fatalf("UserFrames returned %d frames, want 2", len(frames))
	}
	if frames[0].ClassName != "com.example.OrderService" {
		t.Errorf("first user frame = %q", frames[0].ClassName)
	}

	first, ok := e.FirstUserFrame(parsed)
	if !ok || first.MethodName != "process" {
		t.Errorf("FirstUserFrame = %+v, ok = %v", first, ok)
	}

	if _, ok := e.FirstUserFrame(&domain.ParsedTrace{}); ok {
		t.Error("FirstUserFrame on empty trace should report false")
	}
}
