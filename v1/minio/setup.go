package minio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrConnectionFailed is returned when no client is available.
var ErrConnectionFailed = errors.New("minio: connection failed")

// MinioClient is a reconnecting MinIO client bound to one bucket.
type MinioClient struct {
	client atomic.Pointer[minio.Client]

	cfg Config

	observer observability.Observer
	logger   logger.Logger

	shutdownSignal  chan struct{}
	reconnectSignal chan error

	closeShutdownOnce sync.Once
}

// NewClient connects, validates the connection and makes sure the bucket
// exists. It fails when the bucket is missing and creation is not allowed.
func NewClient(config Config, log logger.Logger) (*MinioClient, error) {
	client, err := connectToMinio(config)
	if err != nil {
		return nil, err
	}

	m := &MinioClient{
		cfg:             config,
		logger:          log,
		shutdownSignal:  make(chan struct{}),
		reconnectSignal: make(chan error, 1),
	}
	m.client.Store(client)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.validateConnection(timeoutCtx); err != nil {
		return nil, err
	}
	if err := m.ensureBucketExists(timeoutCtx); err != nil {
		return nil, err
	}

	return m, nil
}

func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint cannot be empty")
	}

	return minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
}

func (m *MinioClient) validateConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	if bucket := m.cfg.Connection.BucketName; bucket != "" {
		_, err := c.BucketExists(ctx, bucket)
		return err
	}

	_, err := c.ListBuckets(ctx)
	return err
}

func (m *MinioClient) ensureBucketExists(ctx context.Context) error {
	bucketName := m.cfg.Connection.BucketName
	if bucketName == "" {
		return fmt.Errorf("bucket name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists, bucket: %v, err: %w", bucketName, err)
	}

	switch {
	case exists:
		return nil
	case !m.cfg.Connection.AccessBucketCreation:
		return fmt.Errorf("bucket %q does not exist, please create it manually", bucketName)
	}

	m.logger.Info("Bucket does not exist, creating it", nil, map[string]interface{}{
		"bucket": bucketName,
		"region": m.cfg.Connection.Region,
	})
	return c.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: m.cfg.Connection.Region})
}

// monitorConnection validates the connection periodically and signals
// retryConnection on failure.
func (m *MinioClient) monitorConnection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := m.validateConnection(ctx)
			if err != nil {
				m.logger.Error("MinIO connection health check failed", err, map[string]interface{}{
					"endpoint": m.cfg.Connection.Endpoint,
				})

				select {
				case m.reconnectSignal <- err:
				default:
				}
			}

		case <-m.shutdownSignal:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (m *MinioClient) retryConnection(ctx context.Context) {
	for {
		select {
		case <-m.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-m.reconnectSignal:
		}

		for {
			newClient, err := connectToMinio(m.cfg)
			if err == nil {
				old := m.client.Swap(newClient)
				if err = m.validateConnection(ctx); err != nil {
					m.client.Store(old)
				}
			}
			if err == nil {
				m.logger.Info("Successfully reconnected to MinIO", nil, map[string]interface{}{
					"endpoint": m.cfg.Connection.Endpoint,
				})
				break
			}

			m.logger.Error("MinIO reconnection failed", err, map[string]interface{}{"will_retry_in": "1s"})
			select {
			case <-m.shutdownSignal:
				return
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// Close stops the monitoring loops.
func (m *MinioClient) Close() {
	m.closeShutdownOnce.Do(func() {
		close(m.shutdownSignal)
	})
}

// Client exposes the underlying client.
func (m *MinioClient) Client() *minio.Client {
	return m.client.Load()
}

func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}
