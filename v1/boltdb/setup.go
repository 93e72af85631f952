package boltdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"go.etcd.io/bbolt"
)

var (
	bucketCollections = []byte("collections")
	bucketRecords     = []byte("records")
	keyDimension      = []byte("dimension")
)

// Backend is a vectordb.Backend stored in a single bbolt file. Every
// collection is a nested bucket; records are JSON values keyed by the bucket
// sequence, so iteration follows insertion order. Queries are brute force.
type Backend struct {
	db   *bbolt.DB
	path string
	log  logger.Logger
}

var _ vectordb.Backend = (*Backend)(nil)

// NewBackend opens (or creates) the database file described by cfg.
func NewBackend(cfg Config, log logger.Logger) (*Backend, error) {
	cfg.applyDefaults()

	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("boltdb: create directory %s: %w", cfg.Path, err)
	}

	path := filepath.Join(cfg.Path, cfg.DatabaseName+".db")
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("boltdb: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCollections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltdb: init %s: %w", path, err)
	}

	log.Info("local index opened", nil, map[string]interface{}{"path": path})
	return &Backend{db: db, path: path, log: log}, nil
}

// Path returns the location of the database file.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Close() error {
	return b.db.Close()
}
