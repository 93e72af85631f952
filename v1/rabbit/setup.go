package rabbit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	heartbeat      = 2 * time.Second
	reconnectDelay = time.Second
)

// ErrClosed is returned by operations on a client that has been closed.
var ErrClosed = errors.New("rabbit: client closed")

// RabbitClient owns one connection and one confirm-mode channel. Both are
// replaced by RetryConnection when the broker drops the connection.
type RabbitClient struct {
	cfg      Config
	log      logger.Logger
	observer observability.Observer

	// mu guards conn and channel.
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewClient connects and declares the topology described by cfg.
func NewClient(cfg Config, log logger.Logger) (*RabbitClient, error) {
	cfg.applyDefaults()

	conn, err := newConnection(cfg)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ", err, map[string]interface{}{"host": cfg.Connection.Host})
		return nil, err
	}

	ch, err := connectToChannel(conn, cfg)
	if err != nil {
		_ = conn.Close()
		log.Error("Failed to set up RabbitMQ channel", err, nil)
		return nil, err
	}

	log.Info("Connected to RabbitMQ", nil, map[string]interface{}{
		"host":  cfg.Connection.Host,
		"queue": cfg.Channel.QueueName,
	})
	return &RabbitClient{
		cfg:            cfg,
		log:            log,
		conn:           conn,
		channel:        ch,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// WithObserver attaches an observer for publish and consume operations.
func (rb *RabbitClient) WithObserver(o observability.Observer) *RabbitClient {
	rb.observer = o
	return rb
}

// Config returns the effective configuration, defaults applied.
func (rb *RabbitClient) Config() Config {
	return rb.cfg
}

// connectToChannel opens a channel in confirm mode and declares the exchange,
// the queue with its dead letter routing, the binding and the prefetch limit.
func connectToChannel(conn *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	fail := func(format string, err error) (*amqp.Channel, error) {
		_ = ch.Close()
		return nil, fmt.Errorf(format, err)
	}

	if err = ch.Confirm(false); err != nil {
		return fail("failed to enable publisher confirms: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Channel.ExchangeName, cfg.Channel.ExchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil)
	if err != nil {
		return fail("failed to declare exchange: %w", err)
	}

	queueArgs := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" {
		err = ch.ExchangeDeclare(cfg.DeadLetter.ExchangeName, "direct", true, false, false, false, nil)
		if err != nil {
			return fail("failed to declare dead letter exchange: %w", err)
		}
		if _, err = ch.QueueDeclare(cfg.DeadLetter.QueueName, true, false, false, false, nil); err != nil {
			return fail("failed to declare dead letter queue: %w", err)
		}
		err = ch.QueueBind(cfg.DeadLetter.QueueName, cfg.DeadLetter.RoutingKey, cfg.DeadLetter.ExchangeName, false, nil)
		if err != nil {
			return fail("failed to bind dead letter queue: %w", err)
		}

		queueArgs["x-dead-letter-exchange"] = cfg.DeadLetter.ExchangeName
		queueArgs["x-dead-letter-routing-key"] = cfg.DeadLetter.RoutingKey
		if cfg.DeadLetter.TTL > 0 {
			queueArgs["x-message-ttl"] = cfg.DeadLetter.TTL * 1000
		}
	}

	_, err = ch.QueueDeclare(cfg.Channel.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		queueArgs)
	if err != nil {
		return fail("failed to declare queue: %w", err)
	}

	if err = ch.QueueBind(cfg.Channel.QueueName, cfg.Channel.RoutingKey, cfg.Channel.ExchangeName, false, nil); err != nil {
		return fail("failed to bind queue: %w", err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		if err = ch.Qos(cfg.Channel.PrefetchCount, 0, false); err != nil {
			return fail("failed to set QoS: %w", err)
		}
	}
	return ch, nil
}

// newConnection dials amqp or amqps, with a client certificate when UseCert is set.
func newConnection(cfg Config) (*amqp.Connection, error) {
	c := cfg.Connection
	scheme := "amqp"
	amqpCfg := amqp.Config{Heartbeat: heartbeat}

	if c.IsSSLEnabled {
		scheme = "amqps"
		tlsCfg, err := createTLSConfig(c)
		if err != nil {
			return nil, err
		}
		amqpCfg.TLSClientConfig = tlsCfg
	}

	url := fmt.Sprintf("%s://%s:%s@%s:%d/", scheme, c.User, c.Password, c.Host, c.Port)
	conn, err := amqp.DialConfig(url, amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s:%d: %w", c.Host, c.Port, err)
	}
	return conn, nil
}

func createTLSConfig(c Connection) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		ServerName: c.ServerName,
		MinVersion: tls.VersionTLS12,
	}

	if c.CACertPath != "" {
		caCert, err := os.ReadFile(c.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in %s", c.CACertPath)
		}
		tlsCfg.RootCAs = pool
	}

	if c.UseCert {
		cert, err := tls.LoadX509KeyPair(c.ClientCertPath, c.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}

// RetryConnection waits for the connection to drop and re-establishes it,
// topology included, until ctx is done or the client is closed.
func (rb *RabbitClient) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		rb.mu.RLock()
		conn := rb.conn
		rb.mu.RUnlock()

		errChan := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-rb.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case amqpErr := <-errChan:
			var err error
			if amqpErr != nil {
				err = amqpErr
			}
			rb.log.Warn("RabbitMQ connection closed, reconnecting", err, nil)
		}

		for {
			select {
			case <-rb.shutdownSignal:
				return
			case <-ctx.Done():
				return
			default:
			}

			newConn, err := newConnection(rb.cfg)
			if err != nil {
				rb.log.Error("RabbitMQ reconnection failed", err, nil)
				time.Sleep(reconnectDelay)
				continue
			}
			ch, err := connectToChannel(newConn, rb.cfg)
			if err != nil {
				_ = newConn.Close()
				rb.log.Error("Failed to re-establish RabbitMQ channel", err, nil)
				time.Sleep(reconnectDelay)
				continue
			}

			rb.mu.Lock()
			rb.conn = newConn
			rb.channel = ch
			rb.mu.Unlock()

			rb.log.Info("Reconnected to RabbitMQ", nil, nil)
			continue outerLoop
		}
	}
}

// Close stops reconnection and consumers and closes the channel and connection.
func (rb *RabbitClient) Close() {
	rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})

	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.channel != nil && !rb.channel.IsClosed() {
		if err := rb.channel.Close(); err != nil {
			rb.log.Warn("Failed to close RabbitMQ channel", err, nil)
		}
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil {
			rb.log.Warn("Failed to close RabbitMQ connection", err, nil)
		}
	}
}

func (rb *RabbitClient) closed() bool {
	select {
	case <-rb.shutdownSignal:
		return true
	default:
		return false
	}
}
