// internal/infrastructure/messaging/rabbitmq/broker.go
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/config"
)

// EventBookAvailable is the type of the event published when a borrowed
// book becomes available
const EventBookAvailable = "book.available"

// BookAvailableEvent is the wire payload of a book.available event
type BookAvailableEvent struct {
	Type       string    `json:"type"`
	BookID     uuid.UUID `json:"bookId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EncodeBookAvailable builds the JSON body for bookID
func EncodeBookAvailable(bookID uuid.UUID, at time.Time) ([]byte, error) {
	return json.Marshal(BookAvailableEvent{
		Type:       EventBookAvailable,
		BookID:     bookID,
		OccurredAt: at.UTC(),
	})
}

// DecodeBookAvailable parses a book.available body
func DecodeBookAvailable(body []byte) (*BookAvailableEvent, error) {
	var event BookAvailableEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if event.Type != EventBookAvailable {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	if event.BookID == uuid.Nil {
		return nil, fmt.Errorf("event has no book id")
	}
	return &event, nil
}

// Broker owns the AMQP connection and channel and the topic exchange
type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   logrus.FieldLogger
}

// NewBroker dials RabbitMQ and declares the exchange
func NewBroker(cfg config.RabbitMQConfig, logger logrus.FieldLogger) (*Broker, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.WithField("exchange", cfg.Exchange).Info("RabbitMQ connection established")

	return &Broker{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

// Close closes the channel and the connection
func (b *Broker) Close() {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}
