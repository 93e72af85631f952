// Package rabbit carries ingestion jobs over RabbitMQ.
//
// A RabbitClient holds one connection and one channel in publisher-confirm
// mode. On every (re)connect it declares a durable exchange, a durable queue
// bound to it and, when configured, a dead letter exchange and queue that
// receive rejected jobs:
//
//	client, err := rabbit.NewClient(cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.Publish(ctx, body, nil)
//
//	wg := &sync.WaitGroup{}
//	for msg := range client.Consume(ctx, wg) {
//		if err := handle(msg.Body()); err != nil {
//			_ = msg.NackMsg(false)
//			continue
//		}
//		_ = msg.AckMsg()
//	}
//
// With fx, FXModule provides the client as Publisher and Consumer and runs
// RetryConnection, which replaces the connection and channel when the broker
// drops them. Consumers re-subscribe on the new channel by themselves.
package rabbit
