package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func samplePayload() SaleCompletedPayload {
	return SaleCompletedPayload{
		SaleID:     101,
		TerminalID: "till-1",
		UserID:     3,
		Items:      []SaleCompletedItem{{ProductID: 7, Quantity: 2}},
		Total:      decimal.NewFromInt(20),
	}
}

func TestBuildSaleCompletedEvent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := BuildSaleCompletedEvent(samplePayload(), EnvelopeOptions{
		CorrelationID: "c0a8e2b6-3c6a-4d7e-9c8f-1f2e3d4c5b6a",
		OccurredAt:    now,
	})

	require.NoError(t, ev.Validate(SaleCompletedEventName, SaleCompletedEventVersion))
	assert.Equal(t, "till-1", ev.PartitionKey, "partitioned by terminal")
	assert.Equal(t, TerminalProducer, ev.Producer)
	assert.Equal(t, SaleCompletedSchemaPath, ev.Schema)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, now, ev.Payload.Timestamp)

	ev.EventName = "WrongName"
	assert.Error(t, ev.Validate(SaleCompletedEventName, SaleCompletedEventVersion))
}

func TestSaleCompletedWireShape(t *testing.T) {
	ev := BuildSaleCompletedEvent(samplePayload(), EnvelopeOptions{EventID: "ev-1"})
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "SaleCompleted", decoded["eventName"])
	assert.Equal(t, "ev-1", decoded["eventId"])
	assert.NotContains(t, decoded, "sequence")

	payload := decoded["payload"].(map[string]any)
	assert.EqualValues(t, 101, payload["saleId"])
	assert.Equal(t, "20", payload["total"])
}

func TestPublisherPublishesEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, timeout: time.Second}
	ev := BuildSaleCompletedEvent(samplePayload(), EnvelopeOptions{EventID: "ev-1", CorrelationID: "cid-1"})

	require.NoError(t, p.PublishSaleCompleted(context.Background(), ev))
	require.Len(t, ch.msgs, 1)
	assert.Equal(t, EventsExchange, ch.exchange)
	assert.Equal(t, SaleCompletedRoutingKey, ch.key)

	msg := ch.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "ev-1", msg.MessageId)
	assert.Equal(t, "cid-1", msg.CorrelationId)

	var got SaleCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, int64(101), got.Payload.SaleID)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisherRejectsInvalidEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, timeout: time.Second}

	err := p.PublishSaleCompleted(context.Background(), SaleCompletedEvent{EventName: SaleCompletedEventName, EventVersion: 1})
	assert.Error(t, err)
	assert.Empty(t, ch.msgs)
}

func TestPublisherSurfacesChannelError(t *testing.T) {
	p := &Publisher{ch: &fakeChannel{err: errors.New("channel closed")}, timeout: time.Second}
	ev := BuildSaleCompletedEvent(samplePayload(), EnvelopeOptions{})

	assert.EqualError(t, p.PublishSaleCompleted(context.Background(), ev), "channel closed")
}
