package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"go.uber.org/zap"
)

// CachedClassifier wraps a LocationClassifier with a response cache keyed by
// the item and location sets
type CachedClassifier struct {
	next   outbound.LocationClassifier
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClassifier creates a new caching classifier
func NewCachedClassifier(next outbound.LocationClassifier, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedClassifier {
	return &CachedClassifier{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("cached-classifier"),
	}
}

// ClassifyItemsToLocations serves repeated questions from the cache. Cache
// failures are logged and never fail the call.
func (c *CachedClassifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	key := CacheKey(itemNames, locationNames)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var answer map[string]string
		if err := json.Unmarshal(data, &answer); err == nil {
			c.logger.Debug("Classifier cache hit", zap.String("key", key))
			return answer, nil
		}
	} else if !stderrors.Is(err, outbound.ErrCacheMiss) {
		c.logger.Warn("Classifier cache read failed", zap.Error(err))
	}

	answer, err := c.next.ClassifyItemsToLocations(ctx, itemNames, locationNames)
	if err != nil {
		return nil, err
	}

	if len(answer) > 0 {
		if data, err := json.Marshal(answer); err == nil {
			if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
				c.logger.Warn("Classifier cache write failed", zap.Error(err))
			}
		}
	}

	return answer, nil
}

// CacheKey is stable under reordering of either list
func CacheKey(itemNames, locationNames []string) string {
	h := sha256.New()
	for _, part := range [][]string{itemNames, locationNames} {
		sorted := make([]string, len(part))
		for i, s := range part {
			sorted[i] = strings.ToLower(strings.TrimSpace(s))
		}
		sort.Strings(sorted)
		h.Write([]byte(strings.Join(sorted, "\x1f")))
		h.Write([]byte{0})
	}
	return "classifier:" + hex.EncodeToString(h.Sum(nil))
}
