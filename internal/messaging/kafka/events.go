package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "orderdesk.order.events"
	TopicDeadLetterQueue = "orderdesk.order.events.dlq"
)

// Kafka headers сообщений
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// Envelope — формат сообщения о событии заказа в topic.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
	// PublishError заполняется только для сообщений в DLQ.
	PublishError string `json:"publish_error,omitempty"`
}

// DecodeEnvelope разбирает значение сообщения из topic.
func DecodeEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return env, nil
}
