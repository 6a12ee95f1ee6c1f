// internal/infrastructure/messaging/rabbitmq/consumer.go
package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/domain/notification"
)

const consumerTag = "library-wishlist-notifier"

// Consumer feeds book.available events into a local dispatcher
type Consumer struct {
	broker     *Broker
	queue      string
	routingKey string
	prefetch   int
	dispatcher notification.Dispatcher
	logger     logrus.FieldLogger
}

// NewConsumer creates a consumer bound to queue with routingKey
func NewConsumer(broker *Broker, queue, routingKey string, prefetch int, dispatcher notification.Dispatcher) *Consumer {
	return &Consumer{
		broker:     broker,
		queue:      queue,
		routingKey: routingKey,
		prefetch:   prefetch,
		dispatcher: dispatcher,
		logger:     broker.logger,
	}
}

// Start declares and binds the queue and consumes it in the background
// until ctx ends or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	ch := c.broker.ch

	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.queue, err)
	}

	if err := ch.QueueBind(q.Name, c.routingKey, c.broker.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", c.queue, err)
	}

	if c.prefetch > 0 {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	deliveries, err := ch.Consume(q.Name, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", c.queue, err)
	}

	c.logger.WithFields(logrus.Fields{
		"queue":       q.Name,
		"routing_key": c.routingKey,
	}).Info("RabbitMQ consumer started")

	go c.loop(ctx, deliveries)
	return nil
}

func (c *Consumer) loop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			_ = c.broker.ch.Cancel(consumerTag, false)
			c.logger.Info("RabbitMQ consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ deliveries channel closed")
				return
			}
			if err := c.handle(d.Body); err != nil {
				c.logger.WithError(err).Error("Dropping invalid book.available event")
			}
			// Runs are not retried, so every delivery is acked
			_ = d.Ack(false)
		}
	}
}

// handle decodes one body and submits the run
func (c *Consumer) handle(body []byte) error {
	event, err := DecodeBookAvailable(body)
	if err != nil {
		return err
	}
	c.dispatcher.Submit(event.BookID)
	return nil
}
