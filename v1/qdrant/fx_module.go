package qdrant

import (
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.uber.org/fx"
)

// QdrantParams groups the dependencies for creating a Qdrant backend.
type QdrantParams struct {
	fx.In

	Config *Config
}

// FXModule provides the Qdrant client as the vectordb.Backend. The vectordb
// store lifecycle closes it on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(qdrant.FromEndpoint("qdrant").WithDatabaseName("resumes")),
//	    qdrant.FXModule,
//	    vectordb.FXModule,
//	)
var FXModule = fx.Module("qdrant",
	fx.Provide(
		fx.Annotate(NewQdrantClient, fx.As(new(vectordb.Backend))),
	),
)
