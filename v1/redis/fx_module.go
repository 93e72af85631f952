package redis

import (
	"context"
	"log"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"go.uber.org/fx"
)

// FXModule provides the *RedisClient and the *EmbeddingCache built on it.
// The client is pinged on start and closed on stop.
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		NewEmbeddingCache,
	),
	fx.Invoke(RegisterRedisLifecycle),
)

type RedisParams struct {
	fx.In

	Config   *Config
	Observer observability.Observer `optional:"true"`
}

func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	client, err := NewClient(*params.Config)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(params.Observer), nil
}

type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RedisClient
}

func RegisterRedisLifecycle(params RedisLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				log.Printf("WARN: Failed to ping Redis on startup: %v", err)
				return err
			}
			log.Println("INFO: Redis client started and healthy")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: Shutting down Redis client")
			return params.Client.Close()
		},
	})
}
