// Package kafka wraps segmentio/kafka-go with JSON producers and a
// handler-driven consumer loop.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. Returning an error skips the offset
// commit so the message is redelivered.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads a topic within a consumer group and hands each message to a
// MessageHandler, committing offsets only after successful handling.
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
	logger  *slog.Logger
}

// NewConsumer builds a Consumer for topic in the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1e3,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		handler: handler,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start consumes until ctx is cancelled, then closes the reader. Handler and
// commit errors are logged and the loop continues with the next message.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return c.reader.Close()
			}
			c.logger.Error("fetch failed", "error", err)
			continue
		}
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("message handling failed",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("offset commit failed",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
