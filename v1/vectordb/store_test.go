package vectordb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Aleph-Alpha/ragcore/v1/boltdb"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (o *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, ctx)
}

func newStore(t *testing.T, opts ...vectordb.Option) *vectordb.Store {
	t.Helper()
	backend, err := boltdb.NewBackend(boltdb.Config{Path: t.TempDir(), DatabaseName: "store_test"}, logger.NewNop())
	require.NoError(t, err)
	s := vectordb.NewStore(backend, logger.NewNop(), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func batch(ids []string, vecs [][]float32) vectordb.Batch {
	b := vectordb.Batch{IDs: ids, Vectors: vecs}
	for _, id := range ids {
		b.Texts = append(b.Texts, "text of "+id)
		b.Metadatas = append(b.Metadatas, vectordb.Metadata{Source: id})
	}
	return b
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first, err := s.GetOrCreate(ctx, "resume")
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, batch([]string{"a"}, [][]float32{{1, 0}})))

	second, err := s.GetOrCreate(ctx, "resume")
	require.NoError(t, err)

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "resume", second.Name())

	set, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"resume": {}}, set)
}

func TestAddRejectsArityMismatchBeforeWriting(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	b := batch([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})
	b.Texts = b.Texts[:1]

	err = coll.Add(ctx, b)
	assert.ErrorIs(t, err, vectordb.ErrArityMismatch)

	n, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddRejectsMixedDimensionsInBatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	err = coll.Add(ctx, batch([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1, 0}}))
	assert.ErrorIs(t, err, vectordb.ErrDimensionMismatch)
}

func TestQueryBounds(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, batch(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0.9, 0.1}, {0, 1}},
	)))

	hits, err := coll.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)

	hits, err = coll.Query(ctx, []float32{1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	_, err = coll.Query(ctx, []float32{1, 0}, 0)
	assert.Error(t, err)
}

func TestExactTextIsNearestToItself(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)

	vecs := [][]float32{{0.2, 0.7, 0.1}, {0.9, 0.05, 0.05}, {0.3, 0.3, 0.4}}
	require.NoError(t, coll.Add(ctx, batch([]string{"x", "y", "z"}, vecs)))

	for i, id := range []string{"x", "y", "z"} {
		hits, err := coll.Query(ctx, vecs[i], 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, id, hits[0].ID)
	}
}

func TestDeleteSemantics(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, batch([]string{"a"}, [][]float32{{1}})))

	require.NoError(t, s.Delete(ctx, "c"))

	_, err = s.Get(ctx, "c")
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

	_, err = coll.Query(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

	err = s.Delete(ctx, "c")
	assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)
}

func TestEmptyNameRejected(t *testing.T) {
	s := newStore(t)
	_, err := s.GetOrCreate(context.Background(), "  ")
	assert.Error(t, err)
}

func TestStoreReportsOperations(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := newStore(t, vectordb.WithObserver(obs))

	coll, err := s.GetOrCreate(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, batch([]string{"a", "b"}, [][]float32{{1}, {1}})))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Len(t, obs.ops, 2)
	assert.Equal(t, "create_collection", obs.ops[0].Operation)
	assert.Equal(t, "add", obs.ops[1].Operation)
	assert.Equal(t, "vectordb", obs.ops[1].Component)
	assert.Equal(t, "c", obs.ops[1].Resource)
	assert.Equal(t, int64(2), obs.ops[1].Size)
}
