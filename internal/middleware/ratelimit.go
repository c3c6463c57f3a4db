package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/R3E-Network/light_api/internal/errors"
	"github.com/R3E-Network/light_api/internal/httputil"
	"github.com/R3E-Network/light_api/internal/logging"
	"github.com/R3E-Network/light_api/internal/metrics"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	limiters map[string]*bucket
	mu       sync.Mutex
	period   time.Duration
	burst    int
	now      func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a limiter that refills one token every period and
// holds at most burst tokens per key.
func NewMemoryLimiter(period time.Duration, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*bucket),
		period:   period,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for key if one is available.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.limiters[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.period), l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Decision{Limit: l.burst, RetryAfter: delay}, nil
	}

	remaining := int(math.Floor(b.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: l.burst, Remaining: remaining}, nil
}

// Cleanup drops buckets that have been idle long enough to refill completely.
// A dropped bucket is indistinguishable from a fresh one.
func (l *MemoryLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	idle := l.period * time.Duration(l.burst)
	cutoff := l.now().Add(-idle)
	removed := 0
	for key, b := range l.limiters {
		if b.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	limiter    Limiter
	period     time.Duration
	burst      int
	trustProxy bool
	logger     *logging.Logger
}

// NewRateLimiter wraps limiter as HTTP middleware. period and burst are only
// used to describe the policy in error bodies.
func NewRateLimiter(limiter Limiter, period time.Duration, burst int, trustProxy bool, logger *logging.Logger) *RateLimiter {
	return &RateLimiter{
		limiter:    limiter,
		period:     period,
		burst:      burst,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// Handler returns the rate limiting middleware handler
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		key := logging.GetClientIP(r.Context())
		if key == "" {
			key = ClientIP(r, rl.trustProxy)
		}

		decision, err := rl.limiter.Allow(r.Context(), key)
		if err != nil {
			// A broken limiter backend must not take the API down with it.
			rl.logger.WithContext(r.Context()).WithError(err).Error("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-Ratelimit-Limit", strconv.Itoa(decision.Limit))

		if !decision.Allowed {
			wait := strconv.FormatInt(int64(math.Ceil(decision.RetryAfter.Seconds())), 10)
			h.Set("X-Ratelimit-After", wait)
			h.Set("Retry-After", wait)

			rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
				"key":    key,
				"path":   r.URL.Path,
				"method": r.Method,
			})
			metrics.RecordRateLimited(r.URL.Path)

			serviceErr := errors.RateLimitExceeded(rl.burst, rl.period.String()).
				WithDetails("retry_after_seconds", wait)
			httputil.WriteServiceError(w, r, serviceErr)
			return
		}

		h.Set("X-Ratelimit-Remaining", strconv.Itoa(decision.Remaining))
		next.ServeHTTP(w, r)
	})
}

// Cleanup prunes idle state when the underlying limiter keeps any.
func (rl *RateLimiter) Cleanup() {
	c, ok := rl.limiter.(interface{ Cleanup() int })
	if !ok {
		return
	}
	if removed := c.Cleanup(); removed > 0 {
		rl.logger.WithFields(map[string]interface{}{"removed": removed}).Debug("pruned idle rate limit buckets")
	}
}
