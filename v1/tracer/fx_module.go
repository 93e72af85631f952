package tracer

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides the *Tracer and flushes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Supply(tracer.Config{ServiceName: "ragcore"}),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers an OnStop hook that shuts the provider
// down, flushing any pending spans to the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, t *Tracer, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down tracer", nil, nil)
			return t.Shutdown(ctx)
		},
	})
}
