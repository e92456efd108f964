package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const EventsExchange = "pos.events"

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch      channel
	timeout time.Duration
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return &Publisher{ch: ch, timeout: 3 * time.Second}, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishSaleCompleted(ctx context.Context, ev SaleCompletedEvent) error {
	if err := ev.Validate(SaleCompletedEventName, SaleCompletedEventVersion); err != nil {
		return fmt.Errorf("invalid SaleCompleted envelope: %w", err)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal SaleCompleted envelope: %w", err)
	}
	return p.publishJSON(ctx, SaleCompletedRoutingKey, ev.EventID, ev.CorrelationID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}

// NoopPublisher drops events. Used when RABBITMQ_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) PublishSaleCompleted(context.Context, SaleCompletedEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
