package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.etcd.io/bbolt"
)

func (b *Backend) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCollections).ForEach(func(k, v []byte) error {
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	return names, err
}

func (b *Backend) HasCollection(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketCollections).Bucket([]byte(name)) != nil
		return nil
	})
	return ok, err
}

// CreateCollection creates the collection bucket if needed. An existing
// collection is left untouched.
func (b *Backend) CreateCollection(ctx context.Context, name string, dim int) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(bucketCollections)
		if root.Bucket([]byte(name)) != nil {
			return nil
		}

		coll, err := root.CreateBucket([]byte(name))
		if err != nil {
			return err
		}
		if _, err := coll.CreateBucket(bucketRecords); err != nil {
			return err
		}
		if dim > 0 {
			return coll.Put(keyDimension, encodeUint(uint64(dim)))
		}
		return nil
	})
}

// Add writes all records in a single transaction.
func (b *Backend) Add(ctx context.Context, name string, records []vectordb.Record) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		coll := tx.Bucket(bucketCollections).Bucket([]byte(name))
		if coll == nil {
			return vectordb.NotFound(name)
		}

		dim := dimension(coll)
		for _, r := range records {
			if dim == 0 {
				dim = len(r.Vector)
				if err := coll.Put(keyDimension, encodeUint(uint64(dim))); err != nil {
					return err
				}
			}
			if len(r.Vector) != dim {
				return vectordb.DimensionMismatch(name, dim, len(r.Vector))
			}
		}

		recs := coll.Bucket(bucketRecords)
		for _, r := range records {
			if err := ctx.Err(); err != nil {
				return err
			}

			seq, err := recs.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", r.ID, err)
			}
			if err := recs.Put(encodeUint(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Backend) Query(ctx context.Context, name string, vector []float32, topK int) ([]vectordb.Hit, error) {
	var hits []vectordb.Hit
	err := b.db.View(func(tx *bbolt.Tx) error {
		coll := tx.Bucket(bucketCollections).Bucket([]byte(name))
		if coll == nil {
			return vectordb.NotFound(name)
		}
		if dim := dimension(coll); dim != 0 && dim != len(vector) {
			return vectordb.DimensionMismatch(name, dim, len(vector))
		}

		records, err := readRecords(coll)
		if err != nil {
			return err
		}
		hits = vectordb.RankByDistance(records, vector, topK)
		return nil
	})
	return hits, err
}

func (b *Backend) Items(ctx context.Context, name string) ([]vectordb.Record, error) {
	var records []vectordb.Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		coll := tx.Bucket(bucketCollections).Bucket([]byte(name))
		if coll == nil {
			return vectordb.NotFound(name)
		}
		var err error
		records, err = readRecords(coll)
		return err
	})
	return records, err
}

func (b *Backend) Count(ctx context.Context, name string) (int, error) {
	var n int
	err := b.db.View(func(tx *bbolt.Tx) error {
		coll := tx.Bucket(bucketCollections).Bucket([]byte(name))
		if coll == nil {
			return vectordb.NotFound(name)
		}
		n = coll.Bucket(bucketRecords).Stats().KeyN
		return nil
	})
	return n, err
}

func (b *Backend) DeleteCollection(ctx context.Context, name string) (bool, error) {
	removed := false
	err := b.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(bucketCollections).DeleteBucket([]byte(name))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		return nil
	})
	return removed, err
}

func readRecords(coll *bbolt.Bucket) ([]vectordb.Record, error) {
	var out []vectordb.Record
	err := coll.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
		var r vectordb.Record
		if err := json.Unmarshal(v, &r); err != nil {
			return fmt.Errorf("decode record %d: %w", binary.BigEndian.Uint64(k), err)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

func dimension(coll *bbolt.Bucket) int {
	v := coll.Get(keyDimension)
	if len(v) != 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(v))
}

func encodeUint(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}
