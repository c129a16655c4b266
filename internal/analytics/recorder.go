package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/resilience"
	"github.com/lib/pq"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS search_events (
    id            BIGSERIAL PRIMARY KEY,
    query         TEXT        NOT NULL,
    keyword_count INT         NOT NULL,
    tags          TEXT[]      NOT NULL DEFAULT '{}',
    category      TEXT        NOT NULL DEFAULT '',
    has_range     BOOLEAN     NOT NULL DEFAULT FALSE,
    sort          TEXT        NOT NULL,
    total_hits    BIGINT      NOT NULL,
    returned      INT         NOT NULL,
    cache_hit     BOOLEAN     NOT NULL,
    latency_ms    BIGINT      NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
)`

const insertEventSQL = `
INSERT INTO search_events
    (query, keyword_count, tags, category, has_range, sort, total_hits, returned, cache_hit, latency_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Recorder persists search events to Postgres through a buffered channel.
// Track never blocks; events are dropped when the buffer is full.
type Recorder struct {
	client  *postgres.Client
	breaker *resilience.CircuitBreaker
	eventCh chan SearchEvent
	logger  *slog.Logger
	done    chan struct{}
}

// NewRecorder builds a Recorder writing through the given client. A circuit
// breaker stops the writer from hammering a database that is down.
func NewRecorder(client *postgres.Client, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Recorder{
		client:  client,
		breaker: resilience.NewCircuitBreaker("analytics-postgres", resilience.CircuitBreakerConfig{}),
		eventCh: make(chan SearchEvent, bufferSize),
		logger:  slog.Default().With("component", "analytics-recorder"),
		done:    make(chan struct{}),
	}
}

// EnsureSchema creates the search_events table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.DB.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("creating search_events table: %w", err)
	}
	return nil
}

// Start launches the writer goroutine. It drains remaining buffered events
// when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		for {
			select {
			case event, ok := <-r.eventCh:
				if !ok {
					return
				}
				r.insert(ctx, event)
			case <-ctx.Done():
				r.drainRemaining()
				return
			}
		}
	}()
	r.logger.Info("analytics recorder started", "buffer_size", cap(r.eventCh))
}

// Track enqueues an event without blocking.
func (r *Recorder) Track(event SearchEvent) {
	select {
	case r.eventCh <- event:
	default:
		r.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the writer to finish.
func (r *Recorder) Close() {
	close(r.eventCh)
	<-r.done
}

func (r *Recorder) insert(ctx context.Context, event SearchEvent) {
	err := r.breaker.Execute(func() error {
		_, err := r.client.DB.ExecContext(ctx, insertEventSQL,
			event.Query,
			event.KeywordCount,
			pq.Array(event.Tags),
			event.Category,
			event.HasRange,
			strings.ToLower(event.Sort),
			int64(event.TotalHits),
			event.Returned,
			event.CacheHit,
			event.LatencyMs,
			event.Timestamp,
		)
		return err
	})
	if err != nil {
		r.logger.Error("failed to record search event", "error", err)
	}
}

func (r *Recorder) drainRemaining() {
	ctx := context.Background()
	for {
		select {
		case event, ok := <-r.eventCh:
			if !ok {
				return
			}
			r.insert(ctx, event)
		default:
			return
		}
	}
}
