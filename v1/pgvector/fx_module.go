package pgvector

import (
	"context"
	"sync"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.uber.org/fx"
)

const healthCheckInterval = 10 * time.Second

// FXModule provides the postgres backend as the vectordb.Backend and runs its
// connection monitor for the lifetime of the application.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(&pgvector.Config{Connection: pgvector.Connection{Host: "db", User: "rag", DbName: "rag"}}),
//	    pgvector.FXModule,
//	    vectordb.FXModule,
//	)
var FXModule = fx.Module("pgvector",
	fx.Provide(
		NewBackendWithDI,
		func(b *Backend) vectordb.Backend { return b },
	),
	fx.Invoke(RegisterPgvectorLifecycle),
)

// PgvectorParams groups the dependencies for creating the backend.
type PgvectorParams struct {
	fx.In

	Config *Config
}

func NewBackendWithDI(params PgvectorParams) (*Backend, error) {
	return NewBackend(*params.Config)
}

type PgvectorLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Backend   *Backend
}

// RegisterPgvectorLifecycle starts the monitor and retry loops. The pool
// itself is closed by the vectordb store lifecycle.
func RegisterPgvectorLifecycle(params PgvectorLifeCycleParams) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Backend.MonitorConnection(ctx, healthCheckInterval)
			}()
			go func() {
				defer wg.Done()
				params.Backend.RetryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
