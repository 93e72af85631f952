package vectordb

import (
	"context"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"go.uber.org/fx"
)

// StoreParams groups the dependencies of a Store. The Backend is supplied by
// one of the boltdb, qdrant or pgvector modules.
type StoreParams struct {
	fx.In

	Backend  Backend
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
	Config   *Config                `optional:"true"`
}

// Config holds backend-independent store settings.
type Config struct {
	// Dimension fixes the vector size of new collections. 0 lets the first
	// write decide.
	Dimension int `yaml:"dimension" env:"VECTORDB_DIMENSION"`
}

// NewStoreFromParams builds a Store from injected dependencies.
func NewStoreFromParams(p StoreParams) *Store {
	opts := []Option{WithObserver(p.Observer)}
	if p.Config != nil {
		opts = append(opts, WithDimension(p.Config.Dimension))
	}
	return NewStore(p.Backend, p.Logger, opts...)
}

// FXModule provides *Store and closes its backend on shutdown.
var FXModule = fx.Module("vectordb",
	fx.Provide(NewStoreFromParams),
	fx.Invoke(RegisterStoreLifecycle),
)

func RegisterStoreLifecycle(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
}
