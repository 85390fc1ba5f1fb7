package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/user/log-triage/internal/adapter/metrics"
)

func TestRateLimit(t *testing.T) {
	// 1 rps with a burst of 2: the third immediate request is rejected.
	h := RateLimit(1, 2, nil, testLogger())(okHandler())

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		req.Header.Set(APIKeyHeader, key)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if got := send("key-a"); got != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, got)
		}
	}
	if got := send("key-a"); got != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status = %d, want 429", got)
	}

	// A different key has its own bucket.
	if got := send("key-b"); got != http.StatusOK {
		t.Errorf("independent key: status = %d, want 200", got)
	}
}

func TestRateLimitFallsBackToRemoteAddr(t *testing.T) {
	h := RateLimit(1, 1, nil, testLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", rr.Code)
	}
}

func TestRateLimitCountsRejections(t *testing.T) {
	m := metrics.NewTriageMetricsWith(prometheus.NewRegistry())
	h := RateLimit(1, 1, m, testLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.Header.Set(APIKeyHeader, "key-a")
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
	}

	// Burst of 1: two of the three requests are rejected and counted.
	got := testutil.ToFloat64(m.RecordsTotal.WithLabelValues("rate_limited"))
	if got != 2 {
		t.Errorf("rate_limited records = %v, want 2", got)
	}
}
