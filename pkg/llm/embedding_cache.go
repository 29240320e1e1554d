package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
)

// EmbeddingCacheConfig configures the embedding cache wrapper.
type EmbeddingCacheConfig struct {
	// Enabled toggles caching.
	Enabled bool
	// TTL is the cache entry lifetime. Embeddings are stable, so long TTLs
	// are safe.
	TTL time.Duration
	// KeyPrefix namespaces cache keys.
	KeyPrefix string
}

// DefaultEmbeddingCacheConfig returns the default embedding cache configuration.
func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		Enabled:   true,
		TTL:       24 * time.Hour,
		KeyPrefix: "emb:",
	}
}

// CachedEmbeddingProvider wraps an EmbeddingProvider with a redis cache.
// Cache failures degrade to the underlying provider, they are never fatal.
type CachedEmbeddingProvider struct {
	provider EmbeddingProvider
	redis    *goredis.Client
	config   *EmbeddingCacheConfig
}

// NewCachedEmbeddingProvider creates a caching wrapper around provider.
func NewCachedEmbeddingProvider(
	provider EmbeddingProvider,
	redis *goredis.Client,
	config *EmbeddingCacheConfig,
) *CachedEmbeddingProvider {
	if config == nil {
		config = DefaultEmbeddingCacheConfig()
	}
	return &CachedEmbeddingProvider{
		provider: provider,
		redis:    redis,
		config:   config,
	}
}

// cacheKey derives a cache key from the text via SHA-256.
func (c *CachedEmbeddingProvider) cacheKey(text string) string {
	return c.config.KeyPrefix + textutil.HashString(text)
}

// EmbedSingle returns a cached embedding when available, otherwise delegates
// to the underlying provider and stores the result.
func (c *CachedEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if !c.config.Enabled || c.redis == nil {
		return c.provider.EmbedSingle(ctx, text)
	}

	key := c.cacheKey(text)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var embedding []float32
		if err := json.Unmarshal([]byte(cached), &embedding); err == nil {
			return embedding, nil
		}
		logger.Warnw("failed to decode cached embedding, recomputing", "key", key)
	} else if err != goredis.Nil {
		logger.Warnw("embedding cache read failed", "error", err)
	}

	embedding, err := c.provider.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(embedding); err == nil {
		if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
			logger.Warnw("embedding cache write failed", "error", err)
		}
	}

	return embedding, nil
}

// Embed resolves each text through the cache, batching only the misses to
// the underlying provider.
func (c *CachedEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.config.Enabled || c.redis == nil {
		return c.provider.Embed(ctx, texts)
	}

	results := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		cached, err := c.redis.Get(ctx, c.cacheKey(text)).Result()
		if err == nil {
			var embedding []float32
			if err := json.Unmarshal([]byte(cached), &embedding); err == nil {
				results[i] = embedding
				continue
			}
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embeddings, err := c.provider.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, embedding := range embeddings {
		if j >= len(missIdx) {
			break
		}
		results[missIdx[j]] = embedding
		if data, err := json.Marshal(embedding); err == nil {
			_ = c.redis.Set(ctx, c.cacheKey(missTexts[j]), data, c.config.TTL).Err()
		}
	}

	return results, nil
}

// Name returns the underlying provider name.
func (c *CachedEmbeddingProvider) Name() string {
	return c.provider.Name()
}
