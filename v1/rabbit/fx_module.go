package rabbit

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"go.uber.org/fx"
)

// FXModule provides the *RabbitClient as Publisher and Consumer, and keeps
// its connection alive for the application lifetime.
var FXModule = fx.Module("rabbit",
	fx.Provide(
		NewClientWithDI,
		func(c *RabbitClient) Publisher { return c },
		func(c *RabbitClient) Consumer { return c },
	),
	fx.Invoke(RegisterRabbitLifecycle),
)

type RabbitParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

func NewClientWithDI(p RabbitParams) (*RabbitClient, error) {
	client, err := NewClient(*p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(p.Observer), nil
}

func RegisterRabbitLifecycle(lc fx.Lifecycle, client *RabbitClient) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				client.RetryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			client.Close()
			wg.Wait()
			return nil
		},
	})
}
