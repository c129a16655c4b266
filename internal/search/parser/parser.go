// Package parser implements the mini query DSL used by the search API.
//
// A query is a whitespace-delimited list of tokens. Tokens prefixed with
// "range:", "tags:", or "category:" become filters; everything else is a
// free-text keyword. The parser performs no I/O and always returns either a
// valid search.Query or a typed error.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
)

var (
	// ErrEmptyQuery is returned when the input is empty or whitespace-only.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrEmptyToken is returned when a token normalizes to nothing.
	ErrEmptyToken = errors.New("empty search token")
	// ErrControlCharacters is returned when the raw input contains control
	// characters other than whitespace.
	ErrControlCharacters = errors.New("query contains control characters")
	// ErrTooManyKeywords is returned when the keyword cap is exceeded.
	ErrTooManyKeywords = fmt.Errorf("too many keywords (max %d)", search.MaxKeywords)
)

// DuplicateFilterError reports a second occurrence of a single-use filter.
type DuplicateFilterError struct {
	Filter string
}

func (e *DuplicateFilterError) Error() string {
	return fmt.Sprintf("duplicate filter: %s", e.Filter)
}

// InvalidFilterError reports a filter whose value could not be parsed.
type InvalidFilterError struct {
	Filter string
	Value  string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter: %q", e.Filter, e.Value)
}

// Parse turns a raw query string into a structured search.Query.
func Parse(input string) (*search.Query, error) {
	if containsControl(input) {
		return nil, ErrControlCharacters
	}
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}

	query := &search.Query{}
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, "range:"):
			if query.Range != nil {
				return nil, &DuplicateFilterError{Filter: "range"}
			}
			value := strings.TrimPrefix(token, "range:")
			r, err := search.ParseTimeRange(value)
			if err != nil {
				return nil, &InvalidFilterError{Filter: "range", Value: value}
			}
			query.Range = r

		case strings.HasPrefix(token, "tags:"):
			value := strings.TrimPrefix(token, "tags:")
			tags := splitList(value)
			if len(tags) == 0 {
				return nil, &InvalidFilterError{Filter: "tags", Value: value}
			}
			query.Tags = append(query.Tags, tags...)

		case strings.HasPrefix(token, "category:"):
			if query.Category != "" {
				return nil, &DuplicateFilterError{Filter: "category"}
			}
			value := strings.TrimSpace(strings.TrimPrefix(token, "category:"))
			if value == "" {
				return nil, &InvalidFilterError{Filter: "category", Value: value}
			}
			query.Category = value

		default:
			if len(query.Keywords) == search.MaxKeywords {
				return nil, ErrTooManyKeywords
			}
			query.Keywords = append(query.Keywords, token)
		}
	}
	return query, nil
}

// containsControl reports whether the input holds control characters beyond
// the whitespace the tokenizer already collapses.
func containsControl(input string) bool {
	for _, r := range input {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated filter value into trimmed, non-empty
// items. An input that yields no items returns nil.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
