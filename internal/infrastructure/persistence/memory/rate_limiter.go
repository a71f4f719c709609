package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket per key refilled at requests per window
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	requests int
	window   time.Duration
	now      func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window for each key
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

var _ outbound.RateLimiter = (*RateLimiter)(nil)

// Allow takes one token from the key's bucket
func (l *RateLimiter) Allow(ctx context.Context, key string) (outbound.RateDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.requests)), l.requests)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return outbound.RateDecision{
		Allowed:   allowed,
		Limit:     l.requests,
		Remaining: remaining,
		Reset:     now.Add(l.window),
	}, nil
}

// prune drops buckets idle for a full window; they would be full again anyway
func (l *RateLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.window {
			delete(l.buckets, key)
		}
	}
}
