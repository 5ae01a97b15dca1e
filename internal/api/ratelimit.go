package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/http/response"
	"github.com/gamedash/gamedash-server/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client. It must run after
// appstate.Middleware. Requests that carried a valid client ID are keyed by it;
// requests whose ID was just issued are keyed by client IP, so callers that
// never send the header share one budget per address.
// Returns 429 Too Many Requests when the budget is spent.
// Health and metrics probes are never limited.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := appstate.ClientID(ctx)
			if key == "" || appstate.ClientIDIssued(ctx) {
				key = "ip:" + getClientIP(r)
			}

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
