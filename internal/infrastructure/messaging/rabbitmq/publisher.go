// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// channelPublisher is the part of *amqp.Channel the publisher uses
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher dispatches pipeline runs by publishing book.available events.
// It satisfies notification.Dispatcher.
type Publisher struct {
	ch         channelPublisher
	exchange   string
	routingKey string
	logger     logrus.FieldLogger
	wg         sync.WaitGroup
}

// NewPublisher creates a publisher on the broker's channel
func NewPublisher(broker *Broker, routingKey string) *Publisher {
	return newPublisher(broker.ch, broker.exchange, routingKey, broker.logger)
}

func newPublisher(ch channelPublisher, exchange, routingKey string, logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// Submit publishes in the background. Failures are logged only.
func (p *Publisher) Submit(bookID uuid.UUID) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.publish(bookID); err != nil {
			p.logger.WithError(err).WithField("book_id", bookID).Error("Failed to publish book.available event")
		}
	}()
}

func (p *Publisher) publish(bookID uuid.UUID) error {
	body, err := EncodeBookAvailable(bookID, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Type:         EventBookAvailable,
		Body:         body,
	})
}

// Wait blocks until in-flight publishes finish or ctx ends
func (p *Publisher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
