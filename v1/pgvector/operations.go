package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (b *Backend) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := b.DB().WithContext(ctx).Table(b.table("collections")).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

func (b *Backend) HasCollection(ctx context.Context, name string) (bool, error) {
	_, err := b.dimension(ctx, b.DB(), name, false)
	if errors.Is(err, vectordb.ErrCollectionNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateCollection registers the collection. An existing collection keeps its
// records; a dimension of 0 is replaced by dim.
func (b *Backend) CreateCollection(ctx context.Context, name string, dim int) error {
	row := collectionRow{Name: name, Dimension: dim}
	err := b.DB().WithContext(ctx).Table(b.table("collections")).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Set{{
				Column: clause.Column{Name: "dimension"},
				Value:  gorm.Expr("CASE WHEN collections.dimension = 0 THEN EXCLUDED.dimension ELSE collections.dimension END"),
			}},
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", name, err)
	}
	return nil
}

// Add inserts all records in one transaction. The collection row is locked so
// concurrent writers agree on the dimension fixed by the first write.
func (b *Backend) Add(ctx context.Context, name string, records []vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}

	return b.Transaction(ctx, func(tx *gorm.DB) error {
		dim, err := b.dimension(ctx, tx, name, true)
		if err != nil {
			return err
		}

		if dim == 0 {
			dim = len(records[0].Vector)
			err := tx.Table(b.table("collections")).Where("name = ?", name).Update("dimension", dim).Error
			if err != nil {
				return fmt.Errorf("failed to fix dimension of %q: %w", name, err)
			}
		}

		rows := make([]chunkRow, len(records))
		for i, r := range records {
			if len(r.Vector) != dim {
				return vectordb.DimensionMismatch(name, dim, len(r.Vector))
			}
			rows[i] = toRow(name, r)
		}

		if err := tx.Table(b.table("chunks")).CreateInBatches(rows, defaultInsertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert %d chunks into %q: %w", len(rows), name, err)
		}
		return nil
	})
}

// Query orders by the pgvector cosine distance operator.
func (b *Backend) Query(ctx context.Context, name string, vector []float32, topK int) ([]vectordb.Hit, error) {
	db := b.DB()
	dim, err := b.dimension(ctx, db, name, false)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return []vectordb.Hit{}, nil
	}
	if len(vector) != dim {
		return nil, vectordb.DimensionMismatch(name, dim, len(vector))
	}

	var rows []hitRow
	err = db.WithContext(ctx).Table(b.table("chunks")).
		Select("chunk_id, text, source, file_name, page, embedding <=> ? AS distance", pgv.NewVector(vector)).
		Where("collection = ?", name).
		Order("distance, id").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", name, err)
	}

	hits := make([]vectordb.Hit, len(rows))
	for i, r := range rows {
		hits[i] = r.hit()
	}
	return hits, nil
}

func (b *Backend) Items(ctx context.Context, name string) ([]vectordb.Record, error) {
	db := b.DB()
	if _, err := b.dimension(ctx, db, name, false); err != nil {
		return nil, err
	}

	var rows []chunkRow
	err := db.WithContext(ctx).Table(b.table("chunks")).Where("collection = ?", name).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read items of %q: %w", name, err)
	}

	out := make([]vectordb.Record, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (b *Backend) Count(ctx context.Context, name string) (int, error) {
	db := b.DB()
	if _, err := b.dimension(ctx, db, name, false); err != nil {
		return 0, err
	}

	var n int64
	if err := db.WithContext(ctx).Table(b.table("chunks")).Where("collection = ?", name).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", name, err)
	}
	return int(n), nil
}

// DeleteCollection removes the collection row; its chunks go with it through
// the ON DELETE CASCADE foreign key.
func (b *Backend) DeleteCollection(ctx context.Context, name string) (bool, error) {
	res := b.DB().WithContext(ctx).Table(b.table("collections")).Where("name = ?", name).Delete(&collectionRow{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete collection %q: %w", name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (b *Backend) dimension(ctx context.Context, db *gorm.DB, name string, forUpdate bool) (int, error) {
	q := db.WithContext(ctx).Table(b.table("collections")).Where("name = ?", name)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row collectionRow
	err := q.Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, vectordb.NotFound(name)
	case err != nil:
		return 0, fmt.Errorf("failed to read collection %q: %w", name, err)
	}
	return row.Dimension, nil
}
