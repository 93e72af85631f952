package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
)

// importExtensions are the object suffixes FetchPrefix downloads.
var importExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// FetchPrefix downloads every .pdf and .txt object under prefix into dir and
// returns the local paths, sorted. Objects are written flat by base name;
// when two keys share a base name the first in listing order wins and the
// other is skipped with a warning.
func (m *MinioClient) FetchPrefix(ctx context.Context, prefix, dir string) ([]string, error) {
	start := time.Now()
	bucket := m.cfg.Connection.BucketName

	c := m.client.Load()
	if c == nil {
		return nil, ErrConnectionFailed
	}

	var (
		paths []string
		total int64
		seen  = make(map[string]string)
	)

	for obj := range c.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			err := fmt.Errorf("minio: list %s/%s: %w", bucket, prefix, obj.Err)
			m.observeOperation("fetch_prefix", bucket, prefix, time.Since(start), err, total, nil)
			return nil, err
		}

		base := path.Base(obj.Key)
		if !importExtensions[path.Ext(base)] {
			continue
		}
		if first, dup := seen[base]; dup {
			m.logger.Warn("skipping object with duplicate file name", nil, map[string]interface{}{
				"key":  obj.Key,
				"kept": first,
			})
			continue
		}
		seen[base] = obj.Key

		dest := filepath.Join(dir, base)
		if err := c.FGetObject(ctx, bucket, obj.Key, dest, minio.GetObjectOptions{}); err != nil {
			err = fmt.Errorf("minio: download %s: %w", obj.Key, err)
			m.observeOperation("fetch_prefix", bucket, prefix, time.Since(start), err, total, nil)
			return nil, err
		}

		total += obj.Size
		paths = append(paths, dest)
	}

	sort.Strings(paths)
	m.observeOperation("fetch_prefix", bucket, prefix, time.Since(start), nil, total, map[string]interface{}{
		"objects": len(paths),
	})
	m.logger.Info("fetched objects", nil, map[string]interface{}{
		"bucket":  bucket,
		"prefix":  prefix,
		"objects": len(paths),
		"bytes":   total,
	})
	return paths, nil
}
