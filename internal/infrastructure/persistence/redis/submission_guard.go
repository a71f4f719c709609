package redis

import (
	"context"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmissionGuard is a busy flag shared by every replica of the service
type SubmissionGuard struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewSubmissionGuard creates a guard whose keys are namespaced by prefix
func NewSubmissionGuard(client redis.UniversalClient, prefix string, logger *zap.Logger) *SubmissionGuard {
	return &SubmissionGuard{
		client: client,
		prefix: prefix + "guard:",
		logger: logger.Named("submission-guard"),
	}
}

var _ outbound.SubmissionGuard = (*SubmissionGuard)(nil)

// Acquire sets the key with SET NX and a ttl
func (g *SubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	fullKey := g.prefix + key

	ok, err := g.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, kitchen.ErrSubmissionInFlight
	}

	return func() {
		// release must run even when the request context is already done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.client, []string{fullKey}, token).Err(); err != nil {
			g.logger.Warn("Failed to release submission guard", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
