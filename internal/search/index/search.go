package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	blevesearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
)

// excerptMaxRunes bounds the plain-text excerpt used when no highlight
// fragment exists for a field.
const excerptMaxRunes = 120

// Search runs the query against the latest committed snapshot, applies sort
// and pagination, and converts matches into highlighted hits. Total counts
// every match regardless of the requested page. Deep pagination costs
// offset+limit ranked results per call.
func (s *Store) Search(q *search.Query, limit, offset int, sort search.Sort) (*search.Result, error) {
	built := buildQuery(s.analyzer, q)

	req := bleve.NewSearchRequestOptions(built.full, limit, offset, false)
	req.Fields = []string{"*"}
	switch sort {
	case search.SortLatest:
		req.SortBy([]string{"-" + FieldUpdated})
	default:
		req.SortBy([]string{"-_score"})
	}
	if built.keyword != nil {
		req.Highlight = bleve.NewHighlightWithStyle(html.Name)
		req.Highlight.AddField(FieldTitle)
		req.Highlight.AddField(FieldContent)
	}

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}

	hits := make([]search.Hit, 0, len(res.Hits))
	for _, match := range res.Hits {
		hit, err := matchToHit(match)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return &search.Result{Total: int(res.Total), Hits: hits}, nil
}

// matchToHit reconstructs a search.Hit from the stored fields of a match.
// Title and content prefer a highlight fragment and fall back to a bounded
// plain excerpt; a hit is never returned with an empty title.
func matchToHit(match *blevesearch.DocumentMatch) (search.Hit, error) {
	title, ok := stringField(match.Fields, FieldTitle)
	if !ok {
		return search.Hit{}, fmt.Errorf("%w: %s", ErrMissingValue, FieldTitle)
	}
	url, ok := stringField(match.Fields, FieldURL)
	if !ok {
		return search.Hit{}, fmt.Errorf("%w: %s", ErrMissingValue, FieldURL)
	}
	content, _ := stringField(match.Fields, FieldContent)
	category, _ := stringField(match.Fields, FieldCategory)

	published, err := epochField(match.Fields, FieldPublished)
	if err != nil {
		return search.Hit{}, err
	}
	updated, err := epochField(match.Fields, FieldUpdated)
	if err != nil {
		return search.Hit{}, err
	}

	hitTitle := fragmentOrExcerpt(match.Fragments, FieldTitle, title)
	if hitTitle == "" {
		hitTitle = title
	}

	return search.Hit{
		ID:          url,
		Title:       hitTitle,
		Content:     fragmentOrExcerpt(match.Fragments, FieldContent, content),
		URL:         url,
		Tags:        stringsField(match.Fields, FieldTags),
		Category:    category,
		PublishedAt: time.Unix(published, 0).UTC(),
		UpdatedAt:   time.Unix(updated, 0).UTC(),
	}, nil
}

// fragmentOrExcerpt returns the first non-empty highlight fragment for the
// field, or a truncated excerpt of the stored text when no match was
// highlighted there.
func fragmentOrExcerpt(fragments blevesearch.FieldFragmentMap, field, stored string) string {
	for _, fragment := range fragments[field] {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			return trimmed
		}
	}
	return excerpt(stored, excerptMaxRunes)
}

// excerpt trims the text and truncates it to at most max runes.
func excerpt(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return string(runes[:max])
}

// stringField extracts a stored string value, taking the first element when
// the field was stored multi-valued.
func stringField(fields map[string]interface{}, name string) (string, bool) {
	switch v := fields[name].(type) {
	case string:
		return v, true
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// stringsField extracts a stored multi-valued string field. A single stored
// value comes back as a one-element slice.
func stringsField(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// epochField extracts a stored epoch-second timestamp.
func epochField(fields map[string]interface{}, name string) (int64, error) {
	switch v := fields[name].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case []interface{}:
		for _, item := range v {
			if f, ok := item.(float64); ok {
				return int64(f), nil
			}
		}
	}
	if _, present := fields[name]; !present {
		return 0, fmt.Errorf("%w: %s", ErrMissingValue, name)
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidTimestamp, name)
}
