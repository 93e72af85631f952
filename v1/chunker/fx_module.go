package chunker

import (
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"go.uber.org/fx"
)

// ChunkerParams groups what both chunkers need.
type ChunkerParams struct {
	fx.In

	Config *Config    `optional:"true"`
	Opener PageOpener `optional:"true"`
	Logger logger.Logger
}

func config(p ChunkerParams) Config {
	if p.Config == nil {
		return DefaultConfig()
	}
	cfg := *p.Config
	cfg.ApplyDefaults()
	return cfg
}

func NewPDFChunkerFromParams(p ChunkerParams) *PDFChunker {
	return NewPDFChunker(p.Opener, config(p).PageErrors, p.Logger)
}

func NewTextChunkerFromParams(p ChunkerParams) *TextChunker {
	cfg := config(p)
	return NewTextChunker(NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap), p.Logger)
}

// FXModule provides *PDFChunker and *TextChunker.
var FXModule = fx.Module("chunker",
	fx.Provide(
		NewPDFChunkerFromParams,
		NewTextChunkerFromParams,
	),
)
