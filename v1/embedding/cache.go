package embedding

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
)

// CachedEmbedder serves repeated texts from a Cache. Cache failures are logged
// and bypassed; only the wrapped Embedder can fail a call.
type CachedEmbedder struct {
	next  Embedder
	cache Cache
	log   logger.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(next Embedder, cache Cache, log logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache, log: log}
}

func (c *CachedEmbedder) Model() string { return c.next.Model() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.next.Model(), text)

	vec, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("embedding cache read failed", err, map[string]interface{}{"key": key})
	} else if ok {
		return vec, nil
	}

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vec); err != nil {
		c.log.Warn("embedding cache write failed", err, map[string]interface{}{"key": key})
	}
	return vec, nil
}
