package minio

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"go.uber.org/fx"
)

// FXModule provides the *MinioClient and keeps its connection monitored.
var FXModule = fx.Module("minio",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterMinioLifecycle),
)

type MinioParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

func NewClientWithDI(p MinioParams) (*MinioClient, error) {
	client, err := NewClient(*p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(p.Observer), nil
}

func RegisterMinioLifecycle(lc fx.Lifecycle, client *MinioClient) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				client.monitorConnection(ctx, connectionHealthCheckInterval)
			}()
			go func() {
				defer wg.Done()
				client.retryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			client.Close()
			cancel()
			wg.Wait()
			return nil
		},
	})
}
