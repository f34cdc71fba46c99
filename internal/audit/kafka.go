package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"hearth/internal/platform/kafka"
)

// KafkaSink publishes audit events to a Kafka topic keyed by entity id, so
// the trail for one record stays ordered within a partition.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, s.topic, []byte(event.EntityID), payload)
}
