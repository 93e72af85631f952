package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// ListCollections returns the collections of the configured database, with the
// database prefix removed.
func (c *QdrantClient) ListCollections(ctx context.Context) ([]string, error) {
	names, err := c.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(names))
	for _, n := range names {
		if name, ok := c.logical(n); ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	c.mu.Lock()
	for name := range c.pending {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	c.mu.Unlock()

	log.Printf("[Qdrant] Found %d collections", len(out))
	return out, nil
}

func (c *QdrantClient) HasCollection(ctx context.Context, name string) (bool, error) {
	if c.isPending(name) {
		return true, nil
	}
	ok, err := c.api.CollectionExists(ctx, c.physical(name))
	if err != nil {
		return false, wrapErr("exists", name, err)
	}
	return ok, nil
}

// CreateCollection creates a cosine collection. Without a known dimension the
// collection is only registered and created on its first Add.
func (c *QdrantClient) CreateCollection(ctx context.Context, name string, dim int) error {
	if dim <= 0 {
		dim = c.cfg.VectorSize
	}

	exists, err := c.api.CollectionExists(ctx, c.physical(name))
	if err != nil {
		return wrapErr("exists", name, err)
	}
	if exists {
		log.Printf("[Qdrant] Collection '%s' already exists", name)
		return nil
	}

	if dim <= 0 {
		c.mu.Lock()
		c.pending[name] = struct{}{}
		c.mu.Unlock()
		return nil
	}
	return c.create(ctx, name, dim)
}

func (c *QdrantClient) create(ctx context.Context, name string, dim int) error {
	log.Printf("[Qdrant] Collection '%s' not found, creating it...", name)

	req := &qdrant.CreateCollection{
		CollectionName: c.physical(name),
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	}
	if err := c.api.CreateCollection(ctx, req); err != nil {
		// A concurrent creator may have won the race.
		if exists, e := c.api.CollectionExists(ctx, c.physical(name)); e == nil && exists {
			return nil
		}
		return wrapErr("create collection", name, err)
	}

	c.mu.Lock()
	delete(c.pending, name)
	c.mu.Unlock()

	log.Printf("[Qdrant] Created collection '%s' successfully", name)
	return nil
}

// Add upserts the records in batches of 200 and waits for each batch to be
// applied. Every record gets a fresh point id, so existing chunk ids are kept.
func (c *QdrantClient) Add(ctx context.Context, name string, records []vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}

	dim, err := c.dimension(ctx, name)
	if err != nil {
		return err
	}
	if dim == 0 {
		dim = len(records[0].Vector)
		if err := c.create(ctx, name, dim); err != nil {
			return err
		}
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		if err := checkDimension(name, dim, len(r.Vector)); err != nil {
			return err
		}
		payload, err := buildPayload(r)
		if err != nil {
			return fmt.Errorf("[Qdrant] payload for %s: %w", r.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: payload,
		})
	}

	physical := c.physical(name)
	wait := true
	upsert := func(ctx context.Context, batch []*qdrant.PointStruct) error {
		_, err := c.api.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: physical, Points: batch, Wait: &wait})
		return err
	}
	remove := func(ctx context.Context, ids []*qdrant.PointId) error {
		_, err := c.api.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: physical,
			Wait:           &wait,
			Points:         qdrant.NewPointsSelector(ids...),
		})
		return err
	}
	return writeBatches(ctx, name, points, defaultBatchSize, upsert, remove)
}

// writeBatches upserts points in batches. When a batch fails, the points of
// the earlier batches are deleted again so the call stores all or nothing.
func writeBatches(
	ctx context.Context,
	name string,
	points []*qdrant.PointStruct,
	size int,
	upsert func(context.Context, []*qdrant.PointStruct) error,
	remove func(context.Context, []*qdrant.PointId) error,
) error {
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))

		if err := upsert(ctx, points[start:end]); err != nil {
			err = fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", start, end, err)
			if start == 0 {
				return err
			}

			ids := make([]*qdrant.PointId, 0, start)
			for _, p := range points[:start] {
				ids = append(ids, p.Id)
			}
			if rbErr := remove(context.WithoutCancel(ctx), ids); rbErr != nil {
				return errors.Join(err, fmt.Errorf("[Qdrant] rollback of %d points failed: %w", start, rbErr))
			}
			log.Printf("[Qdrant] Rolled back %d points after failed batch (collection=%s)", start, name)
			return err
		}
		log.Printf("[Qdrant] Inserted batch [%d:%d] (collection=%s)", start, end, name)
	}
	return nil
}

// Query runs a cosine nearest-neighbour search. Qdrant scores cosine as
// similarity, so distance is 1 - score.
func (c *QdrantClient) Query(ctx context.Context, name string, vector []float32, topK int) ([]vectordb.Hit, error) {
	dim, err := c.dimension(ctx, name)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return []vectordb.Hit{}, nil
	}
	if err := checkDimension(name, dim, len(vector)); err != nil {
		return nil, err
	}

	limit := uint64(topK)
	resp, err := c.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.physical(name),
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapErr("query", name, err)
	}

	hits := make([]vectordb.Hit, 0, len(resp))
	for _, p := range resp {
		r := recordFromPayload(p.GetPayload())
		hits = append(hits, vectordb.Hit{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: 1 - p.GetScore(),
		})
	}
	log.Printf("[Qdrant] Query on '%s' returned %d results", name, len(hits))
	return hits, nil
}

// Items returns every point of the collection in one scroll sized by an
// exact count. Vectors are not returned.
func (c *QdrantClient) Items(ctx context.Context, name string) ([]vectordb.Record, error) {
	n, err := c.Count(ctx, name)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []vectordb.Record{}, nil
	}

	limit := uint32(n)
	points, err := c.api.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: c.physical(name),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapErr("scroll", name, err)
	}

	out := make([]vectordb.Record, 0, len(points))
	for _, p := range points {
		out = append(out, recordFromPayload(p.GetPayload()))
	}
	return out, nil
}

func (c *QdrantClient) Count(ctx context.Context, name string) (int, error) {
	dim, err := c.dimension(ctx, name)
	if err != nil {
		return 0, err
	}
	if dim == 0 {
		return 0, nil
	}

	exact := true
	n, err := c.api.Count(ctx, &qdrant.CountPoints{CollectionName: c.physical(name), Exact: &exact})
	if err != nil {
		return 0, wrapErr("count", name, err)
	}
	return int(n), nil
}

func (c *QdrantClient) DeleteCollection(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	_, wasPending := c.pending[name]
	delete(c.pending, name)
	c.mu.Unlock()

	exists, err := c.api.CollectionExists(ctx, c.physical(name))
	if err != nil {
		return false, wrapErr("exists", name, err)
	}
	if !exists {
		return wasPending, nil
	}

	if err := c.api.DeleteCollection(ctx, c.physical(name)); err != nil {
		return false, wrapErr("delete collection", name, err)
	}
	log.Printf("[Qdrant] Deleted collection '%s'", name)
	return true, nil
}

// dimension returns the vector size of a materialized collection, 0 for a
// pending one, or ErrCollectionNotFound.
func (c *QdrantClient) dimension(ctx context.Context, name string) (int, error) {
	exists, err := c.api.CollectionExists(ctx, c.physical(name))
	if err != nil {
		return 0, wrapErr("exists", name, err)
	}
	if !exists {
		if c.isPending(name) {
			return 0, nil
		}
		return 0, vectordb.NotFound(name)
	}

	info, err := c.api.GetCollectionInfo(ctx, c.physical(name))
	if err != nil {
		return 0, wrapErr("get collection", name, err)
	}
	size, _ := extractVectorDetails(info)
	return size, nil
}

func (c *QdrantClient) isPending(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[name]
	return ok
}
