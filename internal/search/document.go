// Package search defines the document and query model shared by the index
// store, the query parser, and the API layer.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// MaxKeywords is the upper bound on free-text keywords in a single query.
const MaxKeywords = 10

// Document is the write-side record shape. ID is the canonical URL of the
// post and is unique per document. Content is plain text with HTML and
// markdown already stripped by ingestion.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Checksum    string    `json:"checksum"`
}

// ComputeChecksum returns a hex-encoded SHA-256 digest over every semantic
// field of the document. Fields are separated by NUL bytes so that moving
// content between adjacent fields cannot produce the same digest. The
// checksum changes if and only if some input field changes.
func ComputeChecksum(id, title, content, url string, tags []string, category string, publishedAt, updatedAt time.Time) string {
	h := sha256.New()
	sep := []byte{0}
	h.Write([]byte(id))
	h.Write(sep)
	h.Write([]byte(title))
	h.Write(sep)
	h.Write([]byte(content))
	h.Write(sep)
	h.Write([]byte(url))
	h.Write(sep)
	for _, tag := range tags {
		h.Write([]byte(tag))
		h.Write(sep)
	}
	h.Write([]byte(category))
	h.Write(sep)
	h.Write([]byte(strconv.FormatInt(publishedAt.Unix(), 10)))
	h.Write(sep)
	h.Write([]byte(strconv.FormatInt(updatedAt.Unix(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Query is the structured, validated form of a search request, produced by
// the parser. An empty query string is rejected before this struct exists.
type Query struct {
	Keywords []string
	Tags     []string
	Category string
	Range    *TimeRange
}

// IsEmpty reports whether the query carries no clauses at all.
func (q *Query) IsEmpty() bool {
	return len(q.Keywords) == 0 && len(q.Tags) == 0 && q.Category == "" && q.Range == nil
}

// Hit is a single search result. Title and Content may carry highlighted
// snippets instead of the raw stored text.
type Hit struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Result is a page of hits plus the total match count across all pages.
type Result struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Sort selects the result ordering.
type Sort int

const (
	// SortRelevance orders by descending text-relevance score.
	SortRelevance Sort = iota
	// SortLatest orders by the updated timestamp, newest first, ignoring
	// relevance entirely.
	SortLatest
)

// ParseSort maps the wire value to a Sort, defaulting to relevance.
func ParseSort(value string) Sort {
	if value == "latest" {
		return SortLatest
	}
	return SortRelevance
}

func (s Sort) String() string {
	if s == SortLatest {
		return "latest"
	}
	return "relevance"
}
