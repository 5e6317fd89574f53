// Package ratelimit provides a per-client in-memory request limiter.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter caps the request rate of each client key independently. It
// holds no shared state across processes — the service is stateless and
// horizontally scaled, so this only protects a single instance from a
// single noisy client, not a global quota.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a limiter allowing requestsPerMinute sustained requests per
// client key, with a burst equal to that same per-minute figure.
func New(requestsPerMinute int) *Limiter {
	perSecond := float64(requestsPerMinute) / 60.0
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    requestsPerMinute,
	}
}

// Allow reports whether a request for key may proceed right now.
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[key] = limiter
	return limiter
}
