package qdrant

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/sethvargo/go-retry"
)

const (
	defaultBatchSize = 200 // points per upsert request
	defaultPort      = 6334
)

// QdrantClient is a vectordb.Backend on top of the official Qdrant gRPC client.
type QdrantClient struct {
	api    *qdrant.Client
	cfg    *Config
	prefix string

	// pending holds collections created with an unknown dimension. They are
	// materialized on their first Add.
	mu      sync.Mutex
	pending map[string]struct{}
}

var _ vectordb.Backend = (*QdrantClient)(nil)

// NewQdrantClient connects to Qdrant and waits until the server answers a
// health check, retrying with exponential backoff until cfg.Timeout.
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	cfg := p.Config
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	log.Printf("[Qdrant] Connecting to endpoint: %s:%d", cfg.Endpoint, port)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   port,
		APIKey:                 cfg.ApiKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := &QdrantClient{
		api:     client,
		cfg:     cfg,
		prefix:  collectionPrefix(cfg.DatabaseName),
		pending: make(map[string]struct{}),
	}

	if err := qc.waitHealthy(context.Background()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Println("[Qdrant] Client connected successfully")
	return qc, nil
}

func (c *QdrantClient) waitHealthy(ctx context.Context) error {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	backoff := retry.WithMaxDuration(timeout, retry.NewExponential(250*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		resp, err := c.api.HealthCheck(hctx)
		if err != nil {
			log.Printf("[Qdrant] Health check failed, retrying: %v", err)
			return retry.RetryableError(err)
		}

		log.Printf("[Qdrant] Health check passed (title=%s, version=%s, endpoint=%s)", resp.Title, resp.Version, c.cfg.Endpoint)
		return nil
	})
}

// Client exposes the underlying Qdrant client for advanced operations.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

func (c *QdrantClient) Close() error {
	log.Println("[Qdrant] Closing client")
	return c.api.Close()
}
