package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"idport/internal/platform/kafka"
)

// KafkaStore appends audit events to a Kafka topic so downstream consumers
// (SIEM, compliance archival) can fan out. ListByUser is not supported; pair
// this store with a queryable one when reads are needed.
type KafkaStore struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaStore(producer *kafka.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: producer, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: value,
	})
}

func (s *KafkaStore) ListByUser(context.Context, string) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit store is write-only")
}
