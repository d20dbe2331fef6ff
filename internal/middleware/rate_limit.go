package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// EdgeLimit is a coarse per-IP request cap applied at the router, in
// front of the per-action counters inside the handlers. It bounds raw
// request volume; the inner limiter enforces the actual login and
// registration policies.
type EdgeLimit struct {
	Requests int
	Window   time.Duration
}

// LimitByIP builds an httprate middleware for one route group. The denial
// body matches the inner limiter's 429 shape; httprate already sets the
// Retry-After and X-RateLimit-* headers before invoking the handler.
func LimitByIP(limit EdgeLimit) func(next http.Handler) http.Handler {
	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
			if err != nil || retryAfter < 1 {
				retryAfter = int(limit.Window.Seconds())
			}
			pkghttp.WriteErrorWith(w, http.StatusTooManyRequests, "Too many requests. Try again later.", map[string]interface{}{
				"retryAfter": retryAfter,
			})
		}),
	)
}
