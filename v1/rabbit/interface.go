package rabbit

import (
	"context"
	"sync"
)

// Publisher sends a message to the configured exchange.
type Publisher interface {
	Publish(ctx context.Context, body []byte, headers map[string]interface{}) error
}

// Consumer delivers messages from the configured queue.
type Consumer interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message
}

var (
	_ Publisher = (*RabbitClient)(nil)
	_ Consumer  = (*RabbitClient)(nil)
)

// Message is one delivery. Exactly one of AckMsg or NackMsg must be called.
type Message interface {
	AckMsg() error

	// NackMsg rejects the message. Without requeue it goes to the dead
	// letter queue when one is configured.
	NackMsg(requeue bool) error

	Body() []byte
	Header() map[string]interface{}
}
