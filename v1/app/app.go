package app

import (
	"github.com/Aleph-Alpha/ragcore/v1/api"
	"github.com/Aleph-Alpha/ragcore/v1/boltdb"
	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/config"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/minio"
	"github.com/Aleph-Alpha/ragcore/v1/pgvector"
	"github.com/Aleph-Alpha/ragcore/v1/qdrant"
	"github.com/Aleph-Alpha/ragcore/v1/rabbit"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/redis"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Core assembles everything needed to ingest and retrieve: logging, tracing,
// the embedder (cached in Redis when configured), the chunkers, the selected
// collection store backend and the rag.Manager. Metrics and object storage
// are added when enabled.
func Core(cfg *config.Config) fx.Option {
	return fx.Options(
		base(cfg),
		fx.Supply(
			&cfg.Embedding,
			&cfg.Chunker,
			&cfg.RAG,
			&cfg.VectorDB,
		),

		embedding.FXModule,
		chunker.FXModule,
		vectordb.FXModule,
		rag.FXModule,

		backend(cfg),
		embedder(cfg),
		telemetry(cfg),
		objectStore(cfg),
	)
}

// Server is Core plus the HTTP API. With a broker configured the API also
// accepts ingestion jobs.
func Server(cfg *config.Config) fx.Option {
	return fx.Options(
		Core(cfg),
		jobs(cfg),
		fx.Supply(&api.Config{Address: cfg.App.HTTPAddress}),
		api.FXModule,
	)
}

// Worker is Core plus a consumer that runs queued ingestion jobs. It requires
// a broker.
func Worker(cfg *config.Config) fx.Option {
	return fx.Options(
		Core(cfg),
		broker(cfg),
		fx.Supply(&cfg.Worker),
		worker.FXModule,
	)
}

// Producer only publishes jobs: logging, tracing and the broker, without a
// collection store or embedder.
func Producer(cfg *config.Config) fx.Option {
	return fx.Options(
		base(cfg),
		broker(cfg),
		fx.Supply(&cfg.Worker),
		worker.ProducerModule,
	)
}

func base(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg.Logger, cfg.Tracer),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap.Named("fx")}
		}),
		logger.FXModule,
		tracer.FXModule,
	)
}

func broker(cfg *config.Config) fx.Option {
	return fx.Options(fx.Supply(&cfg.Rabbit), rabbit.FXModule)
}

func jobs(cfg *config.Config) fx.Option {
	if !cfg.JobsEnabled() {
		return fx.Options()
	}
	return fx.Options(broker(cfg), fx.Supply(&cfg.Worker), worker.ProducerModule)
}

func backend(cfg *config.Config) fx.Option {
	switch cfg.App.Backend {
	case config.BackendQdrant:
		return fx.Options(fx.Supply(&cfg.Qdrant), qdrant.FXModule)
	case config.BackendPgvector:
		return fx.Options(fx.Supply(&cfg.Pgvector), pgvector.FXModule)
	default:
		return fx.Options(fx.Supply(&cfg.BoltDB), boltdb.FXModule)
	}
}

func embedder(cfg *config.Config) fx.Option {
	if !cfg.CacheEnabled() {
		return fx.Provide(func(c *embedding.Client) embedding.Embedder { return c })
	}

	return fx.Options(
		fx.Supply(&cfg.Redis),
		redis.FXModule,
		fx.Provide(func(c *embedding.Client, cache *redis.EmbeddingCache, log logger.Logger) embedding.Embedder {
			return embedding.NewCachedEmbedder(c, cache, log)
		}),
	)
}

func telemetry(cfg *config.Config) fx.Option {
	if !cfg.App.MetricsEnabled {
		return fx.Options()
	}

	return fx.Options(
		fx.Supply(cfg.Metrics),
		metrics.FXModule,
		fx.Provide(
			func(m *metrics.Metrics) rag.ChunkCounter { return m },
			func(m *metrics.Metrics) api.RequestRecorder { return m },
		),
	)
}

func objectStore(cfg *config.Config) fx.Option {
	if !cfg.ObjectStoreEnabled() {
		return fx.Options()
	}
	return fx.Options(fx.Supply(&cfg.Minio), minio.FXModule)
}
