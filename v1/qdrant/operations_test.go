package qdrant

import (
	"context"
	"errors"
	"testing"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoints(n int) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, n)
	for i := range points {
		points[i] = &qdrant.PointStruct{Id: qdrant.NewIDNum(uint64(i))}
	}
	return points
}

type batchRecorder struct {
	failAt  int
	stored  map[uint64]bool
	batches int
	removed int
	rbErr   error
}

func (r *batchRecorder) upsert(_ context.Context, batch []*qdrant.PointStruct) error {
	r.batches++
	if r.batches == r.failAt {
		return errors.New("connection reset")
	}
	for _, p := range batch {
		r.stored[p.Id.GetNum()] = true
	}
	return nil
}

func (r *batchRecorder) remove(_ context.Context, ids []*qdrant.PointId) error {
	if r.rbErr != nil {
		return r.rbErr
	}
	for _, id := range ids {
		delete(r.stored, id.GetNum())
		r.removed++
	}
	return nil
}

func TestWriteBatchesStoresEverything(t *testing.T) {
	r := &batchRecorder{stored: map[uint64]bool{}}
	err := writeBatches(context.Background(), "cv", testPoints(5), 2, r.upsert, r.remove)
	require.NoError(t, err)
	assert.Equal(t, 3, r.batches)
	assert.Len(t, r.stored, 5)
}

func TestWriteBatchesRollsBackEarlierBatches(t *testing.T) {
	r := &batchRecorder{stored: map[uint64]bool{}, failAt: 3}
	err := writeBatches(context.Background(), "cv", testPoints(5), 2, r.upsert, r.remove)
	require.ErrorContains(t, err, "connection reset")
	assert.Empty(t, r.stored, "nothing of the failed call remains")
	assert.Equal(t, 4, r.removed)
}

func TestWriteBatchesFirstBatchFailureNeedsNoRollback(t *testing.T) {
	r := &batchRecorder{stored: map[uint64]bool{}, failAt: 1}
	err := writeBatches(context.Background(), "cv", testPoints(3), 2, r.upsert, r.remove)
	require.Error(t, err)
	assert.Zero(t, r.removed)
}

func TestWriteBatchesReportsFailedRollback(t *testing.T) {
	r := &batchRecorder{stored: map[uint64]bool{}, failAt: 2, rbErr: errors.New("qdrant down")}
	err := writeBatches(context.Background(), "cv", testPoints(4), 2, r.upsert, r.remove)
	require.ErrorContains(t, err, "connection reset")
	assert.ErrorContains(t, err, "qdrant down")
}
