package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/user/log-triage/internal/adapter/metrics"
)

// RateLimit is a middleware factory that limits requests per API key (or
// remote address when no key is present) with a token bucket. Rejected
// requests are counted under the rate_limited record status; the metrics
// may be nil.
func RateLimit(rps float64, burst int, m *metrics.TriageMetrics, logger *slog.Logger) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				key = r.RemoteAddr
			}

			if !limiterFor(key).Allow() {
				if m != nil {
					m.RecordsTotal.WithLabelValues("rate_limited").Inc()
				}
				logger.Warn("request rate limited", "remote_addr", r.RemoteAddr)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
