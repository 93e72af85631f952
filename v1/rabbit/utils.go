package rabbit

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumeRetryDelay = 100 * time.Millisecond

// ConsumerMessage wraps an AMQP delivery.
type ConsumerMessage struct {
	delivery amqp.Delivery
}

func (m *ConsumerMessage) AckMsg() error {
	return m.delivery.Ack(false)
}

func (m *ConsumerMessage) NackMsg(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

func (m *ConsumerMessage) Body() []byte {
	return m.delivery.Body
}

func (m *ConsumerMessage) Header() map[string]interface{} {
	return m.delivery.Headers
}

// Publish sends body to the configured exchange as a persistent message and
// waits for the broker to confirm it.
func (rb *RabbitClient) Publish(ctx context.Context, body []byte, headers map[string]interface{}) (err error) {
	start := time.Now()
	defer func() {
		rb.observeOperation("produce", rb.cfg.Channel.ExchangeName, rb.cfg.Channel.RoutingKey, time.Since(start), err, int64(len(body)))
	}()

	if rb.closed() {
		return ErrClosed
	}

	rb.mu.RLock()
	ch := rb.channel
	rb.mu.RUnlock()

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx,
		rb.cfg.Channel.ExchangeName,
		rb.cfg.Channel.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Headers:      amqp.Table(headers),
			ContentType:  rb.cfg.Channel.ContentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbit: publish: %w", err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbit: publish confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("rabbit: broker rejected message for exchange %q", rb.cfg.Channel.ExchangeName)
	}
	return nil
}

// Consume delivers messages from the configured queue on the returned
// channel, re-subscribing after reconnects. The channel is closed when ctx is
// done or the client is closed; wg tracks the delivering goroutine.
func (rb *RabbitClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.Channel.QueueName)
}

func (rb *RabbitClient) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	out := make(chan Message, rb.cfg.Channel.PrefetchCount)
	fields := map[string]interface{}{"queue": queueName}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

	outerLoop:
		for {
			select {
			case <-rb.shutdownSignal:
				return
			case <-ctx.Done():
				return
			default:
			}

			rb.mu.RLock()
			ch := rb.channel
			rb.mu.RUnlock()

			deliveries, err := ch.ConsumeWithContext(ctx, queueName,
				"",    // consumer
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil)
			if err != nil {
				rb.log.Warn("Failed to start RabbitMQ consumer", err, fields)
				time.Sleep(consumeRetryDelay)
				continue
			}
			rb.log.Info("Consuming from RabbitMQ", nil, fields)

			for {
				select {
				case <-rb.shutdownSignal:
					return
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						continue outerLoop
					}
					rb.observeOperation("consume", queueName, d.RoutingKey, 0, nil, int64(len(d.Body)))

					select {
					case out <- &ConsumerMessage{delivery: d}:
					case <-ctx.Done():
						_ = d.Nack(false, true)
						return
					}
				}
			}
		}
	}()
	return out
}
