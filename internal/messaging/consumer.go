package messaging

import (
	"context"
	"fmt"

	"billplan/internal/logger"
)

// TransactionHandler processes one decoded transaction event.
type TransactionHandler func(ctx context.Context, msg *TransactionEventMessage) error

// ConsumeTransactionEvents consumes transaction events with manual
// acknowledgment until the context is canceled. Messages that fail to decode
// are rejected without requeue; handler failures are requeued.
func (c *Client) ConsumeTransactionEvents(ctx context.Context, handler TransactionHandler) error {
	msgs, err := c.channel.Consume(
		c.transactionQueue, // queue
		"",                 // consumer
		false,              // auto-ack (we want manual ack)
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Get()
	log.Infow("started consuming transaction events", "queue", c.transactionQueue)

	for {
		select {
		case <-ctx.Done():
			log.Infow("stopping transaction event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := TransactionEventMessageFromJSON(delivery.Body)
			if err != nil {
				log.Errorw("failed to unmarshal transaction event", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				log.Errorw("failed to handle transaction event",
					"error", err,
					"username", msg.Username,
					"category", msg.CategoryName,
				)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}
