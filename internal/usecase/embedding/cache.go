// Package embedding decorates an embedding provider with an in-process LRU
// cache so repeated questions skip the provider round trip.
package embedding

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/domain"
	"github.com/claimwise/claimsage/internal/metrics"
)

// CachedEmbedder memoizes embeddings by exact question text. Eviction is
// LRU; capacity is fixed at construction. Safe for concurrent use.
type CachedEmbedder struct {
	inner  domain.Embedder
	mu     sync.Mutex
	cache  *lru.Cache[string, []float32]
	logger *zap.Logger
}

// NewCachedEmbedder creates the caching decorator with the given capacity.
func NewCachedEmbedder(inner domain.Embedder, capacity int, logger *zap.Logger) (*CachedEmbedder, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache, logger: logger}, nil
}

// Embed returns a cached embedding or calls the inner embedder. Failed or
// empty provider results are never cached, so a recovered provider serves
// the same text correctly on the next call. Cache hits report zero token
// usage.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	c.mu.Lock()
	vec, ok := c.cache.Get(text)
	c.mu.Unlock()
	if ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(result.Embedding) == 0 {
		c.logger.Warn("embedding provider returned an empty vector, not caching")
		return result, nil
	}

	c.mu.Lock()
	c.cache.Add(text, result.Embedding)
	c.mu.Unlock()
	return result, nil
}

// Len reports the number of cached entries.
func (c *CachedEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
