package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 10 * time.Second

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string, topic string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(msgs ...domain.EventMessage) error {
	km := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  time.Now(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return k.writer.WriteMessages(ctx, km...)
}

// PublishOTAEvent keys the event by task so one task's events stay ordered
// within a partition.
func (k *DefaultKafkaPublisher) PublishOTAEvent(event OTAEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(domain.EventMessage{Key: []byte(event.TaskID), Value: v})
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
