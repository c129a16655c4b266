package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/kafka"
)

// Publisher writes ingest events to the search-ingest topic. It is the only
// way document updates reach the index: the index directory has a single
// writer process, so the crawler never touches it directly.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher wraps a Kafka producer for the ingest topic.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "ingest-publisher"),
	}
}

// PublishDocuments publishes one upsert event per document as a single batch.
func (p *Publisher) PublishDocuments(ctx context.Context, docs []search.Document) error {
	if len(docs) == 0 {
		return nil
	}
	events := make([]kafka.Event, 0, len(docs))
	for i := range docs {
		events = append(events, kafka.Event{
			Key:   eventKey,
			Value: Event{Kind: EventUpsert, Document: &docs[i]},
		})
	}
	if err := p.producer.PublishBatch(ctx, events); err != nil {
		return fmt.Errorf("publishing upsert events: %w", err)
	}
	p.logger.Info("documents published", "count", len(docs))
	return nil
}

// PublishRebuild publishes a rebuild event. Upserts published afterwards
// repopulate the cleared index.
func (p *Publisher) PublishRebuild(ctx context.Context) error {
	event := kafka.Event{Key: eventKey, Value: Event{Kind: EventRebuild}}
	if err := p.producer.Publish(ctx, event); err != nil {
		return fmt.Errorf("publishing rebuild event: %w", err)
	}
	p.logger.Info("rebuild published")
	return nil
}
