package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/index"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/metrics"
)

// CacheInvalidator clears cached search results after the index changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Indexer consumes ingest events and applies them to the index store. Upserts
// are buffered and committed in batches; documents whose checksum matches the
// indexed copy are dropped without a write.
type Indexer struct {
	store         *index.Store
	cache         CacheInvalidator
	metrics       *metrics.Metrics
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	pending []search.Document
}

// NewIndexer builds an Indexer on top of an open store. cache and m may be
// nil when caching or metrics are disabled.
func NewIndexer(store *index.Store, cache CacheInvalidator, m *metrics.Metrics, cfg config.IndexConfig) *Indexer {
	return &Indexer{
		store:         store,
		cache:         cache,
		metrics:       m,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		logger:        slog.Default().With("component", "indexer"),
	}
}

// Handle is the Kafka message handler for the ingest topic.
func (ix *Indexer) Handle(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[Event](value)
	if err != nil {
		return err
	}
	switch event.Kind {
	case EventUpsert:
		if event.Document == nil {
			return fmt.Errorf("upsert event without document")
		}
		return ix.enqueue(ctx, *event.Document)
	case EventRebuild:
		return ix.rebuild(ctx)
	default:
		return fmt.Errorf("unknown ingest event kind %q", event.Kind)
	}
}

func (ix *Indexer) enqueue(ctx context.Context, doc search.Document) error {
	ix.mu.Lock()
	ix.pending = append(ix.pending, doc)
	full := len(ix.pending) >= ix.batchSize
	ix.mu.Unlock()
	if full {
		return ix.Flush(ctx)
	}
	return nil
}

func (ix *Indexer) rebuild(ctx context.Context) error {
	if err := ix.Flush(ctx); err != nil {
		return err
	}
	if err := ix.store.DeleteAll(); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	ix.logger.Info("index cleared")
	ix.invalidateCache(ctx)
	ix.updateDocCount()
	return nil
}

// Flush commits all buffered documents in one batch. Documents already in
// the index with an identical checksum are skipped.
func (ix *Indexer) Flush(ctx context.Context) error {
	ix.mu.Lock()
	batch := ix.pending
	ix.pending = nil
	ix.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	changed := make([]search.Document, 0, len(batch))
	skipped := 0
	for _, doc := range batch {
		existing, found, err := ix.store.Checksum(doc.ID)
		if err != nil {
			return fmt.Errorf("reading checksum for %s: %w", doc.ID, err)
		}
		if found && existing == doc.Checksum {
			skipped++
			continue
		}
		changed = append(changed, doc)
	}

	if len(changed) > 0 {
		if err := ix.store.Upsert(changed); err != nil {
			if ix.metrics != nil {
				ix.metrics.IngestBatchesTotal.WithLabelValues("error").Inc()
			}
			return fmt.Errorf("committing batch: %w", err)
		}
		ix.invalidateCache(ctx)
	}

	if ix.metrics != nil {
		ix.metrics.DocsIndexedTotal.Add(float64(len(changed)))
		ix.metrics.DocsSkippedTotal.Add(float64(skipped))
		ix.metrics.IngestBatchesTotal.WithLabelValues("ok").Inc()
	}
	ix.updateDocCount()
	ix.logger.Info("batch committed", "indexed", len(changed), "skipped", skipped)
	return nil
}

// StartFlushLoop commits partial batches on a timer until ctx is cancelled,
// then performs a final flush.
func (ix *Indexer) StartFlushLoop(ctx context.Context) {
	interval := ix.flushInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := ix.Flush(context.Background()); err != nil {
				ix.logger.Error("final flush failed", "error", err)
			}
			return
		case <-ticker.C:
			if err := ix.Flush(ctx); err != nil {
				ix.logger.Error("periodic flush failed", "error", err)
			}
		}
	}
}

func (ix *Indexer) invalidateCache(ctx context.Context) {
	if ix.cache == nil {
		return
	}
	if err := ix.cache.Invalidate(ctx); err != nil {
		ix.logger.Warn("cache invalidation failed", "error", err)
	}
}

func (ix *Indexer) updateDocCount() {
	if ix.metrics == nil {
		return
	}
	if count, err := ix.store.DocCount(); err == nil {
		ix.metrics.IndexDocCount.Set(float64(count))
	}
}
