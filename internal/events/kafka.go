package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher mirrors broadcast events onto a Kafka topic so services
// outside this process (dashboards, alerting) can consume them.
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a producer for the given sink topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish serializes the event and writes it with the broadcast topic as the
// message key, so all events for one topic land in one partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := serializeToMessage(topic, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(topic string, event any) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s event: %w", topic, err)
	}
	return kafkago.Message{
		Key:   []byte(topic),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_topic", Value: []byte(topic)},
		},
	}, nil
}
