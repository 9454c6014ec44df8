// Package tracking publishes checkout activity events to RabbitMQ.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange activity events are published to
const DefaultExchange = "checkout.activity"

// Channel is the part of *amqp.Channel the publisher uses
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Event is the JSON body of every published message
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Publisher sends activity events as persistent JSON messages routed by
// "checkout.<name>".
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	conn     *amqp.Connection
	exchange string
	clock    clockwork.Clock
}

// NewPublisher publishes on an already open channel
func NewPublisher(ch Channel, exchange string, clock clockwork.Clock) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Publisher{ch: ch, exchange: exchange, clock: clock}
}

// Dial connects to the broker and declares a durable topic exchange
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	p := NewPublisher(ch, exchange, nil)
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare failed: %w", err)
	}
	p.conn = conn
	return p, nil
}

// RoutingKey returns the routing key for an activity name
func RoutingKey(name string) string {
	return "checkout." + name
}

// Track publishes one activity event
func (p *Publisher) Track(ctx context.Context, name string, payload map[string]any) error {
	event := Event{
		ID:         uuid.New().String(),
		Name:       name,
		Payload:    payload,
		OccurredAt: p.clock.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", name, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         name,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(name), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", name, err)
	}
	return nil
}

// Close closes the channel and, for dialled publishers, the connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
