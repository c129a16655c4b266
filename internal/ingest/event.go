package ingest

import "github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"

// EventKind discriminates the messages on the ingest topic.
type EventKind string

const (
	// EventUpsert carries one document to be written to the index. Documents
	// whose checksum matches the indexed copy are skipped by the consumer.
	EventUpsert EventKind = "upsert"
	// EventRebuild instructs the consumer to clear the index. The crawler
	// publishes it ahead of a full re-publish of the corpus.
	EventRebuild EventKind = "rebuild"
)

// Event is the wire format of the ingest topic.
type Event struct {
	Kind     EventKind        `json:"kind"`
	Document *search.Document `json:"document,omitempty"`
}

// eventKey is the Kafka message key shared by every ingest event. A single
// key keeps the whole stream on one partition so rebuild and upsert events
// are consumed in publish order.
const eventKey = "blog-search-ingest"
