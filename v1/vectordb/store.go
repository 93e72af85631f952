package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// Store is the collection store used by the index manager. It enforces the
// collection contract on top of any Backend.
type Store struct {
	backend   Backend
	log       logger.Logger
	observer  observability.Observer
	dimension int
}

// Option configures a Store.
type Option func(*Store)

// WithObserver reports every store operation to o.
func WithObserver(o observability.Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithDimension creates new collections with a fixed vector dimension instead
// of fixing it on the first write.
func WithDimension(dim int) Option {
	return func(s *Store) { s.dimension = dim }
}

func NewStore(backend Backend, log logger.Logger, opts ...Option) *Store {
	s := &Store{backend: backend, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListCollections returns the set of existing collection names.
func (s *Store) ListCollections(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()
	names, err := s.backend.ListCollections(ctx)
	s.observeOperation("list_collections", "", time.Since(start), err, int64(len(names)))
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

// Has reports whether a collection exists.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	return s.backend.HasCollection(ctx, name)
}

// GetOrCreate returns a handle to the named collection, creating it if needed.
// Calling it twice with the same name yields handles to the same data.
func (s *Store) GetOrCreate(ctx context.Context, name string) (*Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	start := time.Now()
	err := s.backend.CreateCollection(ctx, name, s.dimension)
	s.observeOperation("create_collection", name, time.Since(start), err, 0)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	return &Collection{store: s, name: name}, nil
}

// Get returns a handle to an existing collection or ErrCollectionNotFound.
func (s *Store) Get(ctx context.Context, name string) (*Collection, error) {
	ok, err := s.Has(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get collection %q: %w", name, err)
	}
	if !ok {
		return nil, NotFound(name)
	}
	return &Collection{store: s, name: name}, nil
}

// Delete removes a collection and all its records. Deleting an absent
// collection logs a warning and returns an error wrapping
// ErrCollectionNotFound, which callers may treat as a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	start := time.Now()
	removed, err := s.backend.DeleteCollection(ctx, name)
	s.observeOperation("delete_collection", name, time.Since(start), err, 0)
	if err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	if !removed {
		s.log.Warn("collection does not exist, nothing deleted", nil, map[string]interface{}{"collection": name})
		return NotFound(name)
	}

	s.log.Info("collection deleted", nil, map[string]interface{}{"collection": name})
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Collection is a handle to a named collection. Handles are cheap and hold no
// state besides the name.
type Collection struct {
	store *Store
	name  string
}

func (c *Collection) Name() string { return c.name }

// Add appends every entry of b. Arity is checked before the backend is touched.
// An empty batch is a no-op.
func (c *Collection) Add(ctx context.Context, b Batch) error {
	if err := ValidateBatch(b); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	start := time.Now()
	err := c.store.backend.Add(ctx, c.name, b.Records())
	c.store.observeOperation("add", c.name, time.Since(start), err, int64(b.Len()))
	if err != nil {
		return fmt.Errorf("add to %q: %w", c.name, err)
	}
	return nil
}

// Query returns up to topK hits ordered by ascending cosine distance.
func (c *Collection) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("query %q: topK must be at least 1, got %d", c.name, topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query %q: empty query vector", c.name)
	}

	start := time.Now()
	hits, err := c.store.backend.Query(ctx, c.name, vector, topK)
	c.store.observeOperation("query", c.name, time.Since(start), err, int64(len(hits)))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", c.name, err)
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Items returns every stored record.
func (c *Collection) Items(ctx context.Context) ([]Record, error) {
	start := time.Now()
	items, err := c.store.backend.Items(ctx, c.name)
	c.store.observeOperation("items", c.name, time.Since(start), err, int64(len(items)))
	if err != nil {
		return nil, fmt.Errorf("items of %q: %w", c.name, err)
	}
	return items, nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	n, err := c.store.backend.Count(ctx, c.name)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", c.name, err)
	}
	return n, nil
}

// ValidateBatch checks that the parallel arrays line up and that every vector
// in the batch has the same non-zero dimension.
func ValidateBatch(b Batch) error {
	n := len(b.IDs)
	if len(b.Vectors) != n || len(b.Texts) != n || len(b.Metadatas) != n {
		return fmt.Errorf("%w: ids=%d vectors=%d texts=%d metadatas=%d",
			ErrArityMismatch, n, len(b.Vectors), len(b.Texts), len(b.Metadatas))
	}
	if n == 0 {
		return nil
	}

	dim := len(b.Vectors[0])
	if dim == 0 {
		return errors.New("vectordb: empty vector in batch")
	}
	for i, v := range b.Vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: entry %d has %d values, entry 0 has %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("vectordb: collection name must not be empty")
	}
	return nil
}
