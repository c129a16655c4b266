// Package analytics records search traffic in Postgres. Recording is
// best-effort and fully asynchronous; a slow or absent database never blocks
// or fails a search request.
package analytics

import "time"

// SearchEvent describes one executed search.
type SearchEvent struct {
	Query        string
	KeywordCount int
	Tags         []string
	Category     string
	HasRange     bool
	Sort         string
	TotalHits    int
	Returned     int
	CacheHit     bool
	LatencyMs    int64
	Timestamp    time.Time
}
