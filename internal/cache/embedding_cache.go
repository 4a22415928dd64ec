package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/llm"
)

const embeddingPrefix = "intake:embedding:"

// CachedEmbedder memoizes an Embedder in Redis.
type CachedEmbedder struct {
	inner  llm.Embedder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedEmbedder wraps inner; a nil client passes every call through.
func NewCachedEmbedder(inner llm.Embedder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl, logger: logger.Named("cache.embedding")}
}

// Embed returns a cached vector or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.client == nil {
		return c.inner.Embed(ctx, text)
	}

	key := textKey(embeddingPrefix, text)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			return vec, nil
		}
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis get failed, calling provider", zap.Error(err))
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(vec); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("redis set failed", zap.Error(err))
		}
	}
	return vec, nil
}
