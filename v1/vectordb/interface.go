package vectordb

import "context"

// Backend is the storage engine behind a Store. Implementations live in the
// boltdb, qdrant and pgvector packages.
//
// Implementations must:
//   - make CreateCollection idempotent; a dim of 0 fixes the dimension on the
//     first Add
//   - return an error wrapping ErrCollectionNotFound from Add, Query, Items and
//     Count when the collection is absent
//   - return an error wrapping ErrDimensionMismatch when a vector does not
//     match the collection dimension
//   - key records internally so adding an existing ID appends a new record
//   - return Query hits ordered by ascending cosine distance
//   - be safe for concurrent use
type Backend interface {
	// ListCollections returns the names of all collections, in no particular order.
	ListCollections(ctx context.Context) ([]string, error)

	HasCollection(ctx context.Context, name string) (bool, error)

	CreateCollection(ctx context.Context, name string, dim int) error

	// Add writes all records atomically where the engine allows it.
	Add(ctx context.Context, name string, records []Record) error

	Query(ctx context.Context, name string, vector []float32, topK int) ([]Hit, error)

	// Items returns every record of the collection. Vectors may be omitted.
	Items(ctx context.Context, name string) ([]Record, error)

	Count(ctx context.Context, name string) (int, error)

	// DeleteCollection reports whether a collection was removed.
	DeleteCollection(ctx context.Context, name string) (bool, error)

	Close() error
}
