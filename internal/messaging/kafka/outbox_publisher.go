package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish отправляет событие; ключ — ID заказа, чтобы события одного заказа шли по порядку.
func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	value, err := json.Marshal(newEnvelope(event))
	if err != nil {
		return fmt.Errorf("marshal outbox envelope: %w", err)
	}
	return p.producer.Send(p.topic, messageKey(event), value, map[string]string{
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
	})
}

// DLQPublisher отправляет в dead letter topic события, которые не удалось опубликовать.
type DLQPublisher struct {
	producer      *Producer
	topic         string
	originalTopic string
}

func NewDLQPublisher(producer *Producer, topic, originalTopic string) *DLQPublisher {
	if topic == "" {
		topic = TopicDeadLetterQueue
	}
	if originalTopic == "" {
		originalTopic = TopicOrderEvents
	}
	return &DLQPublisher{producer: producer, topic: topic, originalTopic: originalTopic}
}

func (p *DLQPublisher) PublishFailed(event domain.OutboxMessage, publishErr error) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka dlq publisher is not initialized")
	}

	env := newEnvelope(event)
	env.PublishError = publishErr.Error()
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal dlq envelope: %w", err)
	}
	return p.producer.Send(p.topic, messageKey(event), value, map[string]string{
		HeaderEventType:     event.EventType,
		HeaderOriginalTopic: p.originalTopic,
		HeaderErrorMessage:  publishErr.Error(),
		HeaderFailedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

func newEnvelope(event domain.OutboxMessage) Envelope {
	return Envelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

func messageKey(event domain.OutboxMessage) string {
	if event.AggregateID != "" {
		return event.AggregateID
	}
	return event.ID
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
