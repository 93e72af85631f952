package boltdb

import (
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.uber.org/fx"
)

// BoltParams groups the dependencies needed to open the local index.
type BoltParams struct {
	fx.In

	Config *Config
	Logger logger.Logger
}

// NewBackendFromParams opens the backend and exposes it as a vectordb.Backend.
// The file is closed by the vectordb store lifecycle.
func NewBackendFromParams(p BoltParams) (vectordb.Backend, error) {
	return NewBackend(*p.Config, p.Logger)
}

// FXModule provides the local bbolt backend as the vectordb.Backend.
var FXModule = fx.Module("boltdb",
	fx.Provide(NewBackendFromParams),
)
