package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.uber.org/fx"
)

// Chunker turns a directory into per-file chunks. Both chunker.PDFChunker and
// chunker.TextChunker implement it.
type Chunker interface {
	Chunk(ctx context.Context, dir string) ([]chunker.FileChunks, error)
}

// ChunkCounter receives the number of chunks stored per collection and kind.
type ChunkCounter interface {
	AddChunks(collection, kind string, n int)
}

// Params groups the Manager dependencies.
type Params struct {
	fx.In

	Store    *vectordb.Store
	Embedder embedding.Embedder
	PDFs     *chunker.PDFChunker
	Texts    *chunker.TextChunker
	Logger   logger.Logger
	Config   *Config                `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Counter  ChunkCounter           `optional:"true"`
}

// Manager is the vector index manager: it ingests directories into named
// collections and answers retrieval queries against them.
type Manager struct {
	store    *vectordb.Store
	embedder embedding.Embedder
	pdfs     Chunker
	texts    Chunker
	log      logger.Logger
	tracer   *tracer.Tracer
	observer observability.Observer
	counter  ChunkCounter
	cfg      Config
	locks    *keyedMutex
}

// NewManager validates the configuration and builds a Manager.
func NewManager(p Params) (*Manager, error) {
	cfg := DefaultConfig()
	if p.Config != nil {
		cfg = *p.Config
		cfg.ApplyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		store:    p.Store,
		embedder: p.Embedder,
		log:      p.Logger,
		tracer:   p.Tracer,
		observer: p.Observer,
		counter:  p.Counter,
		cfg:      cfg,
		locks:    newKeyedMutex(),
	}
	// Typed nil pointers must not end up inside the interface fields.
	if p.PDFs != nil {
		m.pdfs = p.PDFs
	}
	if p.Texts != nil {
		m.texts = p.Texts
	}
	return m, nil
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// ListCollections returns the set of collection names in the index.
func (m *Manager) ListCollections(ctx context.Context) (map[string]struct{}, error) {
	return m.store.ListCollections(ctx)
}

// ListCollectionItems returns every record of a collection without vectors.
func (m *Manager) ListCollectionItems(ctx context.Context, collection string) ([]vectordb.Record, error) {
	coll, err := m.store.Get(ctx, collection)
	if err != nil {
		return nil, err
	}
	items, err := coll.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Vector = nil
	}
	return items, nil
}

// DeleteCollection removes a collection. An absent collection yields an error
// wrapping vectordb.ErrCollectionNotFound.
func (m *Manager) DeleteCollection(ctx context.Context, collection string) error {
	unlock := m.locks.Lock(collection)
	defer unlock()

	start := time.Now()
	err := m.store.Delete(ctx, collection)
	m.observeOperation("delete_collection", collection, time.Since(start), err, 0)
	return err
}

func (m *Manager) topK(k int) int {
	if k <= 0 {
		return m.cfg.TopK
	}
	return k
}

func (m *Manager) resolveCollection(name string) string {
	if name == "" {
		return m.cfg.DefaultCollection
	}
	return name
}

func chunkerFor(c Chunker, kind string) (Chunker, error) {
	if c == nil {
		return nil, fmt.Errorf("rag: no %s chunker configured", kind)
	}
	return c, nil
}
