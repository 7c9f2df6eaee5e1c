// Package amqp publishes authentication audit events to RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/quora/core"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultQueue = "quora.auth.events"

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	mu    sync.Mutex // amqp channels are not safe for concurrent publishes
	ch    Channel
	conn  *amqp.Connection // nil when the caller owns the channel
	queue string
}

var _ core.EventPublisher = (*Publisher)(nil)

// NewPublisher declares queue as durable on ch and publishes to it through
// the default exchange.
func NewPublisher(ch Channel, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

// Dial connects to url and opens a publisher on a fresh channel.
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	p, err := NewPublisher(ch, queue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// Publish sends event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event core.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Type:         string(event.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
