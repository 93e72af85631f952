// Package redis provides a Redis client and an embedding cache built on it.
//
// EmbeddingCache implements embedding.Cache. Wrapping an embedder with
// embedding.NewCachedEmbedder makes re-ingesting unchanged documents skip
// the provider:
//
//	client, _ := redis.NewClient(redis.Config{Host: "localhost", TTL: 24 * time.Hour})
//	cached := embedding.NewCachedEmbedder(provider, redis.NewEmbeddingCache(client), log)
//
// Every command reports to the configured observability.Observer with
// component "redis".
package redis
