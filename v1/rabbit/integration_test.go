package rabbit

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestPublishConsumeAndDeadLetter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRabbit(ctx, t)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	obs := &TestObserver{}
	client, err := NewClient(testConfig(host, port), logger.NewNop())
	require.NoError(t, err)
	client.WithObserver(obs)
	defer client.Close()

	require.NoError(t, client.Publish(ctx, []byte(`{"n":1}`), map[string]interface{}{"traceparent": "abc"}))
	require.NoError(t, client.Publish(ctx, []byte(`{"n":2}`), nil))

	consumeCtx, cancel := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}
	msgs := client.Consume(consumeCtx, wg)

	first := receive(t, msgs)
	assert.JSONEq(t, `{"n":1}`, string(first.Body()))
	assert.Equal(t, "abc", first.Header()["traceparent"])
	require.NoError(t, first.AckMsg())

	second := receive(t, msgs)
	assert.JSONEq(t, `{"n":2}`, string(second.Body()))
	require.NoError(t, second.NackMsg(false))

	cancel()
	wg.Wait()

	require.Eventually(t, func() bool {
		q, err := client.channel.QueueDeclarePassive(client.cfg.DeadLetter.QueueName, true, false, false, false, nil)
		return err == nil && q.Messages == 1
	}, 10*time.Second, 200*time.Millisecond, "rejected message reaches the dead letter queue")

	var produced, consumed int
	for _, op := range obs.GetOperations() {
		switch op.Operation {
		case "produce":
			produced++
			assert.NoError(t, op.Error)
		case "consume":
			consumed++
		}
	}
	assert.Equal(t, 2, produced)
	assert.Equal(t, 2, consumed)
}

func TestPublishAfterCloseFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRabbit(ctx, t)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	client, err := NewClient(testConfig(host, port), logger.NewNop())
	require.NoError(t, err)
	client.Close()

	assert.ErrorIs(t, client.Publish(ctx, []byte("x"), nil), ErrClosed)
}

func TestRabbitWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRabbit(ctx, t)
	defer func() { _ = containerInstance.Terminate(ctx) }()

	cfg := testConfig(host, port)
	var publisher Publisher
	var consumer Consumer
	app := fxtest.New(t,
		fx.Supply(&cfg),
		fx.Provide(func() logger.Logger { return logger.NewNop() }),
		FXModule,
		fx.Populate(&publisher, &consumer),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, publisher.Publish(ctx, []byte("fx"), nil))

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	msg := receive(t, consumer.Consume(consumeCtx, &sync.WaitGroup{}))
	assert.Equal(t, "fx", string(msg.Body()))
	require.NoError(t, msg.AckMsg())
}

func testConfig(host string, port int) Config {
	return Config{
		Connection: Connection{Host: host, Port: port, User: "guest", Password: "guest"},
		DeadLetter: DeadLetter{ExchangeName: "ragcore.dlx"},
	}
}

func receive(t *testing.T, msgs <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-msgs:
		require.True(t, ok, "consumer stopped early")
		return m
	case <-time.After(15 * time.Second):
		t.Fatal("no message within 15s")
		return nil
	}
}

func initializeRabbit(ctx context.Context, t *testing.T) (string, int, testcontainers.Container) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5672/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("Server startup complete").WithStartupTimeout(60*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err == nil || !strings.Contains(err.Error(), "docker.sock") {
			break
		}
		time.Sleep(time.Duration(attempt+1) * time.Second)
	}
	require.NoError(t, err, fmt.Sprintf("failed to start RabbitMQ container: %v", err))

	mapped, err := containerInstance.MappedPort(ctx, "5672")
	require.NoError(t, err)
	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, mapped.Port()), 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "RabbitMQ port not ready")

	return host, mapped.Int(), containerInstance
}
