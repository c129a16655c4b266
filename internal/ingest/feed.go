// Package ingest turns feed entries into search documents and moves them
// through the Kafka ingest pipeline into the index store. The engine itself
// never fetches anything; this package is the ingestion side of that
// boundary.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/resilience"
)

var (
	ErrMissingTitle     = errors.New("missing entry title")
	ErrMissingLink      = errors.New("missing entry link")
	ErrMissingTimestamp = errors.New("missing entry timestamp")
)

// Entry is one record of the JSON search-index feed produced by the blog's
// static build.
type Entry struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Date     string   `json:"date"`
	Updated  string   `json:"updated,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
}

// ParseFeed decodes the feed body, a JSON array of entries.
func ParseFeed(body []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	return entries, nil
}

// EntryToDocument validates a feed entry and converts it into a complete
// search document with a freshly computed checksum. Relative entry URLs are
// resolved against baseURL.
func EntryToDocument(entry *Entry, baseURL string) (*search.Document, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	rawURL := strings.TrimSpace(entry.URL)
	if rawURL == "" {
		return nil, ErrMissingLink
	}
	url := resolveEntryURL(rawURL, baseURL)

	publishedAt, err := parseEntryTime(entry.Date)
	if err != nil {
		return nil, err
	}
	updatedAt := publishedAt
	if strings.TrimSpace(entry.Updated) != "" {
		updatedAt, err = parseEntryTime(entry.Updated)
		if err != nil {
			return nil, err
		}
	}

	content := normalizeWhitespace(stripMoreMarkers(entry.Content))
	category := strings.TrimSpace(entry.Category)
	tags := make([]string, 0, len(entry.Tags))
	for _, tag := range entry.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	doc := &search.Document{
		ID:          url,
		Title:       title,
		Content:     content,
		URL:         url,
		Tags:        tags,
		Category:    category,
		PublishedAt: publishedAt,
		UpdatedAt:   updatedAt,
	}
	doc.Checksum = search.ComputeChecksum(
		doc.ID, doc.Title, doc.Content, doc.URL,
		doc.Tags, doc.Category, doc.PublishedAt, doc.UpdatedAt,
	)
	return doc, nil
}

// BaseURL derives "scheme://host" from the feed URL for resolving relative
// entry links. It returns "" when the feed URL has no host.
func BaseURL(feedURL string) string {
	scheme, rest, ok := strings.Cut(feedURL, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

func resolveEntryURL(url, baseURL string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if baseURL == "" {
		return url
	}
	if strings.HasPrefix(url, "/") {
		return baseURL + url
	}
	return baseURL + "/" + url
}

func parseEntryTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid entry timestamp %q: %w", trimmed, err)
	}
	return parsed.UTC(), nil
}

// stripMoreMarkers removes the static generator's excerpt markers; the rest
// of the content is indexed as-is.
func stripMoreMarkers(content string) string {
	content = strings.ReplaceAll(content, "<!--more-->", "")
	return strings.ReplaceAll(content, "<!-- more -->", "")
}

// normalizeWhitespace collapses whitespace runs into single spaces.
func normalizeWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// FetchFeed downloads the feed body with retry and backoff.
func FetchFeed(ctx context.Context, client *http.Client, cfg config.CrawlerConfig) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, "feed-fetch", resilience.RetryConfig{MaxAttempts: cfg.MaxAttempts}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.FeedURL, nil)
		if err != nil {
			return fmt.Errorf("building feed request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching feed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetching feed: unexpected status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading feed body: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
