package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Event is one record to publish: Key selects the partition, Value is
// marshaled to JSON.
type Event struct {
	Key   string
	Value any
}

// Producer writes JSON events to a single Kafka topic. Writes are synchronous
// and acknowledged by all replicas, so a nil error means the event is
// durable.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer builds a Producer for topic using the configured brokers.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  3,
			RequiredAcks: kafka.RequireAll,
		},
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish writes one event.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish failed", "key", event.Key, "error", err)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	return nil
}

// PublishBatch writes all events in one WriteMessages call.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encodeMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("batch publish failed", "count", len(msgs), "error", err)
		return fmt.Errorf("publishing batch to kafka: %w", err)
	}
	p.logger.Debug("batch published", "count", len(msgs))
	return nil
}

// Close flushes buffered writes and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func encodeMessage(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event value: %w", err)
	}
	return kafka.Message{Key: []byte(event.Key), Value: value}, nil
}
