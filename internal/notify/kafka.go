package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"idport/internal/platform/kafka"
)

// KafkaNotifier publishes messages to the SMS gateway topic. The downstream
// gateway consumer owns carrier delivery and retries.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaNotifier(producer *kafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.producer.Produce(ctx, &kafka.Message{
		Topic: n.topic,
		Key:   []byte(msg.Recipient),
		Value: value,
	})
}
