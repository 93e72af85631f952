package qdrant

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// QdrantContainer represents a Qdrant container for testing
type QdrantContainer struct {
	testcontainers.Container
	Host string
	Port string
}

func setupQdrantContainer(ctx context.Context) (*QdrantContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := strconv.Itoa(port)
	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.11.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := c.MappedPort(ctx, "6334")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &QdrantContainer{Container: c, Host: host, Port: mappedPort.Port()}, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func newTestClient(t *testing.T, qc *QdrantContainer, database string) *QdrantClient {
	t.Helper()
	port, err := strconv.Atoi(qc.Port)
	require.NoError(t, err)

	client, err := NewQdrantClient(QdrantParams{Config: &Config{
		Endpoint:     qc.Host,
		Port:         port,
		DatabaseName: database,
		Timeout:      30 * time.Second,
	}})
	require.NoError(t, err)
	return client
}

func TestQdrantBackendIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = qc.Terminate(ctx) }()

	client := newTestClient(t, qc, "itest")
	defer client.Close()

	store := vectordb.NewStore(client, logger.NewNop())

	t.Run("lazy collection is materialized by first add", func(t *testing.T) {
		coll, err := store.GetOrCreate(ctx, "resume")
		require.NoError(t, err)

		ok, err := store.Has(ctx, "resume")
		require.NoError(t, err)
		assert.True(t, ok)

		err = coll.Add(ctx, vectordb.Batch{
			IDs:       []string{"cv_page_0", "cv_page_1", "cv_page_0"},
			Vectors:   [][]float32{{1, 0, 0}, {0, 1, 0}, {1, 0, 0}},
			Texts:     []string{"Ilyan is an AI engineer", "Lives in Berlin", "Ilyan is an AI engineer"},
			Metadatas: []vectordb.Metadata{{Page: vectordb.PageOf(0), Source: "cv.pdf", FileName: "cv.pdf"}, {Page: vectordb.PageOf(1)}, {Page: vectordb.PageOf(0)}},
		})
		require.NoError(t, err)

		n, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n, "duplicate chunk ids append")
	})

	t.Run("query orders by distance", func(t *testing.T) {
		coll, err := store.Get(ctx, "resume")
		require.NoError(t, err)

		hits, err := coll.Query(ctx, []float32{0, 1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "cv_page_1", hits[0].ID)
		assert.Equal(t, "1", hits[0].Metadata.PageLabel())
		assert.InDelta(t, 0, hits[0].Distance, 1e-5)
		assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		coll, err := store.Get(ctx, "resume")
		require.NoError(t, err)

		_, err = coll.Query(ctx, []float32{1, 0}, 1)
		assert.ErrorIs(t, err, vectordb.ErrDimensionMismatch)
	})

	t.Run("items carry payload", func(t *testing.T) {
		coll, err := store.Get(ctx, "resume")
		require.NoError(t, err)

		items, err := coll.Items(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("database prefix isolates indexes", func(t *testing.T) {
		other := newTestClient(t, qc, "other")
		defer other.Close()

		names, err := other.ListCollections(ctx)
		require.NoError(t, err)
		assert.NotContains(t, names, "resume")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "resume"))
		err := store.Delete(ctx, "resume")
		assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)

		_, err = store.Get(ctx, "resume")
		assert.ErrorIs(t, err, vectordb.ErrCollectionNotFound)
	})
}

func TestQdrantWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = qc.Terminate(ctx) }()

	port, err := strconv.Atoi(qc.Port)
	require.NoError(t, err)

	var backend vectordb.Backend
	app := fxtest.New(t,
		fx.Supply(FromEndpoint(qc.Host).WithDatabaseName("fx").WithVectorSize(4)),
		fx.Decorate(func(cfg *Config) *Config {
			cfg.Port = port
			return cfg
		}),
		FXModule,
		fx.Populate(&backend),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, backend.CreateCollection(ctx, "sized", 0))
	ok, err := backend.HasCollection(ctx, "sized")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := backend.Count(ctx, "sized")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, backend.Close())
}
