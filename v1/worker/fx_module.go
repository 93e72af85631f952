package worker

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/minio"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/rabbit"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"go.uber.org/fx"
)

// ProducerModule provides the *Enqueuer. It needs a rabbit.Publisher.
var ProducerModule = fx.Module("worker.producer",
	fx.Provide(NewEnqueuerWithDI),
)

// FXModule provides the *Worker and runs it for the application lifetime.
// It needs a rabbit.Consumer and the *rag.Manager.
var FXModule = fx.Module("worker",
	fx.Provide(NewWorkerWithDI),
	fx.Invoke(RegisterWorkerLifecycle),
)

type EnqueuerParams struct {
	fx.In

	Config    *Config `optional:"true"`
	Publisher rabbit.Publisher
	Tracer    *tracer.Tracer `optional:"true"`
}

func NewEnqueuerWithDI(p EnqueuerParams) *Enqueuer {
	e := NewEnqueuer(p.Publisher, p.Tracer)
	if p.Config != nil {
		e.WithAllowedRoot(p.Config.AllowedRoot)
	}
	return e
}

type WorkerParams struct {
	fx.In

	Config   *Config `optional:"true"`
	Consumer rabbit.Consumer
	Manager  *rag.Manager
	Minio    *minio.MinioClient `optional:"true"`
	Logger   logger.Logger
	Tracer   *tracer.Tracer         `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

func NewWorkerWithDI(p WorkerParams) *Worker {
	var cfg Config
	if p.Config != nil {
		cfg = *p.Config
	}

	var importer Importer
	if p.Minio != nil {
		importer = p.Minio
	}

	return NewWorker(cfg, p.Consumer, p.Manager, importer, p.Logger).
		WithTracer(p.Tracer).
		WithObserver(p.Observer)
}

// RegisterWorkerLifecycle starts Run on start. On stop it cancels the run,
// which requeues in-flight jobs, and waits for it to return.
func RegisterWorkerLifecycle(lc fx.Lifecycle, w *Worker, log logger.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := w.Run(ctx); err != nil {
					log.Error("Worker stopped with error", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
