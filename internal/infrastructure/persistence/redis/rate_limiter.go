package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding window log kept in one sorted set per key, so all
// replicas share the count
type RateLimiter struct {
	client   redis.UniversalClient
	prefix   string
	requests int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter allows requests per window for each key
func NewRateLimiter(client redis.UniversalClient, prefix string, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		prefix:   prefix + "ratelimit:",
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

var _ outbound.RateLimiter = (*RateLimiter)(nil)

// Allow records the request and counts the window it falls in. Rejected
// requests are recorded too, so a client that keeps hammering stays limited.
func (l *RateLimiter) Allow(ctx context.Context, key string) (outbound.RateDecision, error) {
	now := l.now()
	fullKey := l.prefix + key
	windowStart := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, fullKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, fullKey)
	pipe.Expire(ctx, fullKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return outbound.RateDecision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	n := int(count.Val())
	remaining := l.requests - n
	if remaining < 0 {
		remaining = 0
	}

	return outbound.RateDecision{
		Allowed:   n <= l.requests,
		Limit:     l.requests,
		Remaining: remaining,
		Reset:     now.Add(l.window),
	}, nil
}
