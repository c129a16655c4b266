package ingest

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/index"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func newTestIndexer(t *testing.T, batchSize int) (*Indexer, *index.Store, *countingInvalidator) {
	t.Helper()
	store, err := index.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	inv := &countingInvalidator{}
	ix := NewIndexer(store, inv, nil, config.IndexConfig{BatchSize: batchSize, FlushInterval: time.Second})
	return ix, store, inv
}

func upsertEvent(t *testing.T, doc search.Document) []byte {
	t.Helper()
	value, err := json.Marshal(Event{Kind: EventUpsert, Document: &doc})
	if err != nil {
		t.Fatal(err)
	}
	return value
}

func testDocument(id, title string) search.Document {
	now := time.Date(2022, 4, 1, 10, 0, 0, 0, time.UTC)
	doc := search.Document{
		ID:          id,
		Title:       title,
		Content:     "body text",
		URL:         id,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	doc.Checksum = search.ComputeChecksum(
		doc.ID, doc.Title, doc.Content, doc.URL,
		doc.Tags, doc.Category, doc.PublishedAt, doc.UpdatedAt,
	)
	return doc
}

func TestIndexerCommitsWhenBatchFull(t *testing.T) {
	ctx := context.Background()
	ix, store, _ := newTestIndexer(t, 2)

	if err := ix.Handle(ctx, nil, upsertEvent(t, testDocument("https://b.example/1", "one"))); err != nil {
		t.Fatal(err)
	}
	count, _ := store.DocCount()
	if count != 0 {
		t.Fatalf("batch committed early, count = %d", count)
	}

	if err := ix.Handle(ctx, nil, upsertEvent(t, testDocument("https://b.example/2", "two"))); err != nil {
		t.Fatal(err)
	}
	count, _ = store.DocCount()
	if count != 2 {
		t.Fatalf("count = %d, want 2 after batch commit", count)
	}
}

func TestIndexerSkipsUnchangedChecksum(t *testing.T) {
	ctx := context.Background()
	ix, store, inv := newTestIndexer(t, 1)

	doc := testDocument("https://b.example/1", "one")
	if err := ix.Handle(ctx, nil, upsertEvent(t, doc)); err != nil {
		t.Fatal(err)
	}
	invalidations := inv.calls.Load()

	// Same document again: checksum unchanged, no write, no invalidation.
	if err := ix.Handle(ctx, nil, upsertEvent(t, doc)); err != nil {
		t.Fatal(err)
	}
	if got := inv.calls.Load(); got != invalidations {
		t.Fatalf("unchanged document triggered cache invalidation (%d -> %d)", invalidations, got)
	}

	// Changed title means a new checksum and a write.
	changed := testDocument("https://b.example/1", "one, revised")
	if err := ix.Handle(ctx, nil, upsertEvent(t, changed)); err != nil {
		t.Fatal(err)
	}
	if got := inv.calls.Load(); got != invalidations+1 {
		t.Fatalf("changed document did not invalidate cache")
	}

	count, _ := store.DocCount()
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	checksum, found, err := store.Checksum(changed.ID)
	if err != nil || !found {
		t.Fatalf("checksum lookup failed: %v found=%v", err, found)
	}
	if checksum != changed.Checksum {
		t.Fatal("index still holds the stale checksum")
	}
}

func TestIndexerRebuildClearsIndex(t *testing.T) {
	ctx := context.Background()
	ix, store, _ := newTestIndexer(t, 1)

	if err := ix.Handle(ctx, nil, upsertEvent(t, testDocument("https://b.example/1", "one"))); err != nil {
		t.Fatal(err)
	}

	value, err := json.Marshal(Event{Kind: EventRebuild})
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.Handle(ctx, nil, value); err != nil {
		t.Fatal(err)
	}
	count, _ := store.DocCount()
	if count != 0 {
		t.Fatalf("count = %d after rebuild, want 0", count)
	}
}

func TestIndexerRejectsMalformedEvents(t *testing.T) {
	ctx := context.Background()
	ix, _, _ := newTestIndexer(t, 1)

	if err := ix.Handle(ctx, nil, []byte(`{"kind":"upsert"}`)); err == nil {
		t.Fatal("upsert without document accepted")
	}
	if err := ix.Handle(ctx, nil, []byte(`{"kind":"unknown"}`)); err == nil {
		t.Fatal("unknown event kind accepted")
	}
	if err := ix.Handle(ctx, nil, []byte(`{broken`)); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

func TestIndexerFlushEmptyIsNoop(t *testing.T) {
	ix, _, inv := newTestIndexer(t, 10)
	if err := ix.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if inv.calls.Load() != 0 {
		t.Fatal("empty flush invalidated cache")
	}
}
