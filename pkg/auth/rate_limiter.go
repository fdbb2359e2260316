package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket per key (client IP or user id)
type RateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per key
// with bursts up to burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{rps: rate.Limit(rps), burst: burst, now: time.Now}
}

// Allow reports whether a request for key may proceed now
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	v, _ := l.limiters.LoadOrStore(key, &keyedLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	kl := v.(*keyedLimiter)

	kl.mu.Lock()
	kl.lastSeen = now
	kl.mu.Unlock()

	return kl.limiter.AllowN(now, 1)
}

// Cleanup forgets keys not seen for maxIdle and returns how many were dropped
func (l *RateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)
	removed := 0
	l.limiters.Range(func(key, value any) bool {
		kl := value.(*keyedLimiter)
		kl.mu.Lock()
		idle := kl.lastSeen.Before(cutoff)
		kl.mu.Unlock()
		if idle {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
