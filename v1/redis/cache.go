package redis

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
)

// EmbeddingCache stores embedding vectors as JSON arrays under
// <KeyPrefix><key>.
type EmbeddingCache struct {
	client *RedisClient
}

var _ embedding.Cache = (*EmbeddingCache)(nil)

func NewEmbeddingCache(client *RedisClient) *EmbeddingCache {
	return &EmbeddingCache{client: client}
}

func (c *EmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var vec []float32
	err := c.client.GetJSON(ctx, c.client.cfg.KeyPrefix+key, &vec)
	switch {
	case IsNilError(err):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis: read cached embedding: %w", err)
	}
	return vec, true, nil
}

func (c *EmbeddingCache) Set(ctx context.Context, key string, vector []float32) error {
	if err := c.client.SetJSON(ctx, c.client.cfg.KeyPrefix+key, vector, c.client.cfg.TTL); err != nil {
		return fmt.Errorf("redis: write cached embedding: %w", err)
	}
	return nil
}
