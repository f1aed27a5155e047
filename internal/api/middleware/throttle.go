package middleware

import (
	"net/http"
	"time"

	"github.com/newthinker/pickboard/internal/api/response"
	"github.com/newthinker/pickboard/internal/core"
	"golang.org/x/time/rate"
)

// NewRefreshLimiter allows one refresh per minInterval across all clients.
// A non-positive interval disables the limit.
func NewRefreshLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// Throttle rejects requests with 429 once limiter has no token left.
func Throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				response.Error(w, http.StatusTooManyRequests, core.ErrRefreshRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
