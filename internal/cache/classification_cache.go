// Package cache holds Redis-backed caches for model outputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/domain"
)

const classificationPrefix = "intake:classification:"

// ClassificationCache stores model classifications keyed by normalized text.
// Only model answers are cached; fallback results are never written.
type ClassificationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClassificationCache returns a cache; a nil client disables it.
func NewClassificationCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ClassificationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ClassificationCache{client: client, ttl: ttl, logger: logger.Named("cache.classification")}
}

func textKey(prefix, text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(sum[:])
}

// Get returns a cached classification. Misses and Redis errors both report false.
func (c *ClassificationCache) Get(ctx context.Context, text string) (domain.Classification, bool) {
	if c == nil || c.client == nil {
		return domain.Classification{}, false
	}
	key := textKey(classificationPrefix, text)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", zap.Error(err))
		}
		return domain.Classification{}, false
	}
	var out domain.Classification
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("corrupt cached classification, deleting", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return domain.Classification{}, false
	}
	return out, true
}

// Set stores a classification; failures are logged only.
func (c *ClassificationCache) Set(ctx context.Context, text string, classification domain.Classification) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(classification)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, textKey(classificationPrefix, text), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.Error(err))
	}
}
