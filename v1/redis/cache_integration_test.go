package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Model() string { return "test-model" }

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	return []float32{float32(len(text)), 0.5, -1}, nil
}

func TestEmbeddingCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	obs := &TestObserver{}
	client, err := NewClient(Config{Host: host, Port: port, TTL: time.Minute})
	require.NoError(t, err)
	client.WithObserver(obs)
	defer client.Close()
	require.NoError(t, client.Ping(ctx))

	cache := NewEmbeddingCache(client)

	t.Run("miss then hit", func(t *testing.T) {
		vec, ok, err := cache.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, vec)

		require.NoError(t, cache.Set(ctx, "k1", []float32{0.25, -3, 7}))

		vec, ok, err = cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []float32{0.25, -3, 7}, vec)

		ttl, err := client.Client().TTL(ctx, DefaultKeyPrefix+"k1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("cached embedder calls the provider once per text", func(t *testing.T) {
		provider := &countingEmbedder{}
		cached := embedding.NewCachedEmbedder(provider, cache, logger.NewNop())

		first, err := cached.Embed(ctx, "Go developer in Berlin")
		require.NoError(t, err)
		second, err := cached.Embed(ctx, "Go developer in Berlin")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("corrupt entry is reported", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, DefaultKeyPrefix+"bad", "not json", 0))
		_, ok, err := cache.Get(ctx, "bad")
		assert.Error(t, err)
		assert.False(t, ok)

		n, err := client.Delete(ctx, DefaultKeyPrefix+"bad")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("misses are not observed as errors", func(t *testing.T) {
		for _, op := range obs.GetOperations() {
			if op.Operation == "get" && op.Metadata["hit"] == false {
				assert.NoError(t, op.Error)
			}
		}
	})
}

func TestRedisWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	var cache *EmbeddingCache
	app := fxtest.New(t,
		fx.Supply(&Config{Host: host, Port: port}),
		FXModule,
		fx.Populate(&cache),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, cache.Set(ctx, "fx", []float32{1}))
	_, ok, err := cache.Get(ctx, "fx")
	require.NoError(t, err)
	assert.True(t, ok)
}

func initializeRedis(ctx context.Context, t *testing.T) (string, int, testcontainers.Container) {
	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createRedisContainer(ctx, hostPort)
	require.NoError(t, err)

	port, err := containerInstance.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port.Port()), 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "Redis port not ready")

	return host, port.Int(), containerInstance
}

func createRedisContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"6379/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			return containerInstance, nil
		}

		if strings.Contains(lastErr.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}

		break
	}

	return nil, fmt.Errorf("failed to start Redis container after 3 attempts: %w", lastErr)
}

func getFreePort() (string, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	addr := l.Addr().(*net.TCPAddr)
	return strconv.Itoa(addr.Port), nil
}
