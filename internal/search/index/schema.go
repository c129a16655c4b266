// Package index owns the persistent full-text index: its schema, the
// CJK-capable analyzer, the single-writer store, and query execution.
package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/porter"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field names of the index schema. The schema is fixed: opening an existing
// index validates that every one of these is present.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldURL       = "url"
	FieldTags      = "tags"
	FieldCategory  = "category"
	FieldPublished = "published"
	FieldUpdated   = "updated"
	FieldChecksum  = "checksum"
)

// AnalyzerName is the registered name of the CJK-capable text analyzer used
// for title and content.
const AnalyzerName = "blog_cjk"

const longTokenFilterName = "drop_long_tokens"

// maxTokenLength drops abnormally long tokens that would bloat the term
// dictionary without ever being searched for.
const maxTokenLength = 40

// buildIndexMapping constructs the full index schema: exact-string fields for
// id/url/tags/category/checksum, CJK-analyzed text fields for title/content,
// and numeric epoch-second fields for published/updated (doc values enabled
// so they can drive sorting and range filters).
//
// CJK handling follows the Lucene CJK approach: the unicode tokenizer splits
// ideograph runs, cjk_width normalizes full-width forms, and cjk_bigram turns
// adjacent CJK characters into overlapping bigrams so that languages without
// whitespace word boundaries tokenize into searchable units. Latin text
// passes through lowercasing and Porter stemming unchanged by the bigram
// filter.
func buildIndexMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	if err := m.AddCustomTokenFilter(longTokenFilterName, map[string]interface{}{
		"type": length.Name,
		"min":  1.0,
		"max":  float64(maxTokenLength),
	}); err != nil {
		return nil, fmt.Errorf("registering %s filter: %w", longTokenFilterName, err)
	}
	if err := m.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			cjk.WidthName,
			lowercase.Name,
			cjk.BigramName,
			porter.Name,
			longTokenFilterName,
		},
	}); err != nil {
		return nil, fmt.Errorf("registering %s analyzer: %w", AnalyzerName, err)
	}

	text := bleve.NewTextFieldMapping()
	text.Analyzer = AnalyzerName
	text.Store = true
	text.IncludeTermVectors = true // positional phrase queries and highlighting
	text.IncludeInAll = false

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	exact.Store = true
	exact.IncludeTermVectors = false
	exact.IncludeInAll = false

	epoch := bleve.NewNumericFieldMapping()
	epoch.Store = true
	epoch.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldID, exact)
	doc.AddFieldMappingsAt(FieldTitle, text)
	doc.AddFieldMappingsAt(FieldContent, text)
	doc.AddFieldMappingsAt(FieldURL, exact)
	doc.AddFieldMappingsAt(FieldTags, exact)
	doc.AddFieldMappingsAt(FieldCategory, exact)
	doc.AddFieldMappingsAt(FieldPublished, epoch)
	doc.AddFieldMappingsAt(FieldUpdated, epoch)
	doc.AddFieldMappingsAt(FieldChecksum, exact)

	m.DefaultMapping = doc
	m.DefaultAnalyzer = AnalyzerName
	return m, nil
}

// schemaFields lists every field the store depends on at runtime.
var schemaFields = []string{
	FieldID,
	FieldTitle,
	FieldContent,
	FieldURL,
	FieldTags,
	FieldCategory,
	FieldPublished,
	FieldUpdated,
	FieldChecksum,
}

// validateMapping checks a (possibly reopened) index mapping against the
// expected schema once at startup, so downstream code never discovers a
// missing field mid-query.
func validateMapping(m mapping.IndexMapping) error {
	impl, ok := m.(*mapping.IndexMappingImpl)
	if !ok {
		return fmt.Errorf("%w: unexpected mapping type %T", ErrMissingField, m)
	}
	root := impl.DefaultMapping
	if root == nil {
		return fmt.Errorf("%w: no default document mapping", ErrMissingField)
	}
	for _, name := range schemaFields {
		sub, ok := root.Properties[name]
		if !ok || len(sub.Fields) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if m.AnalyzerNamed(AnalyzerName) == nil {
		return fmt.Errorf("%w: %s", ErrMissingTokenizer, AnalyzerName)
	}
	return nil
}
