package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleCompletedEventName    = "SaleCompleted"
	SaleCompletedEventVersion = 1
	SaleCompletedSchemaPath   = "contracts/events/pos/SaleCompleted.v1.enveloped.schema.json"
	SaleCompletedRoutingKey   = "pos.sale.completed"
	TerminalProducer          = "pos-terminal"
)

type SaleCompletedItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type SaleCompletedPayload struct {
	SaleID     int64               `json:"saleId"`
	TerminalID string              `json:"terminalId"`
	UserID     int64               `json:"userId,omitempty"`
	Items      []SaleCompletedItem `json:"items"`
	Total      decimal.Decimal     `json:"total"`
	Timestamp  time.Time           `json:"timestamp"`
}

type SaleCompletedEvent = EventEnvelope[SaleCompletedPayload]

// BuildSaleCompletedEvent wraps payload in a v1 envelope partitioned by
// terminal.
func BuildSaleCompletedEvent(payload SaleCompletedPayload, opts EnvelopeOptions) SaleCompletedEvent {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = occurredAt
	}

	producer := opts.Producer
	if producer == "" {
		producer = TerminalProducer
	}

	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = payload.TerminalID
	}

	return SaleCompletedEvent{
		EventName:     SaleCompletedEventName,
		EventVersion:  SaleCompletedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		OccurredAt:    occurredAt,
		Schema:        SaleCompletedSchemaPath,
		Payload:       payload,
	}
}
