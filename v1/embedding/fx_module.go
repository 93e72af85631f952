package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the embedding *Client. The Embedder consumed by the rest of
// the application is chosen by the app package, which may wrap the client in a
// CachedEmbedder when a cache is configured.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClient, // -> *Client
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// RegisterEmbeddingLifecycle closes idle connections on shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
