package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
)

// builtQuery pairs the complete filter tree with the keyword-only portion.
// Highlighting is driven by the keyword portion alone: tag, category, and
// range filters never produce highlights.
type builtQuery struct {
	full    query.Query
	keyword query.Query
}

// buildQuery translates a structured search.Query into an executable bleve
// query tree. Keywords, tag filters, category filter, and the date range are
// all conjunctive; a query with no clauses at all matches everything.
func buildQuery(analyzer analysis.Analyzer, q *search.Query) builtQuery {
	var must []query.Query

	keywordQuery := buildKeywordQuery(analyzer, q.Keywords)
	if keywordQuery != nil {
		must = append(must, keywordQuery)
	}

	for _, tag := range q.Tags {
		must = append(must, termQuery(FieldTags, tag))
	}
	if q.Category != "" {
		must = append(must, termQuery(FieldCategory, q.Category))
	}
	if q.Range != nil {
		if rangeQuery := buildRangeQuery(q.Range); rangeQuery != nil {
			must = append(must, rangeQuery)
		}
	}

	if len(must) == 0 {
		return builtQuery{full: bleve.NewMatchAllQuery()}
	}
	if len(must) == 1 {
		return builtQuery{full: must[0], keyword: keywordQuery}
	}
	return builtQuery{full: bleve.NewConjunctionQuery(must...), keyword: keywordQuery}
}

// buildKeywordQuery builds the free-text portion: each keyword must match
// somewhere (conjunction across keywords), and within a keyword the title,
// content, tag, and category alternatives are disjunctive, so a bare keyword
// can hit a tag or category name as well as body text.
func buildKeywordQuery(analyzer analysis.Analyzer, keywords []string) query.Query {
	if len(keywords) == 0 {
		return nil
	}
	perKeyword := make([]query.Query, 0, len(keywords))
	for _, kw := range keywords {
		tokens := analyzeKeyword(analyzer, kw)

		var should []query.Query
		if fieldQ := fieldQuery(FieldTitle, tokens); fieldQ != nil {
			should = append(should, fieldQ)
		}
		if fieldQ := fieldQuery(FieldContent, tokens); fieldQ != nil {
			should = append(should, fieldQ)
		}
		should = append(should, termQuery(FieldTags, kw))
		should = append(should, termQuery(FieldCategory, kw))

		perKeyword = append(perKeyword, bleve.NewDisjunctionQuery(should...))
	}
	if len(perKeyword) == 1 {
		return perKeyword[0]
	}
	return bleve.NewConjunctionQuery(perKeyword...)
}

// analyzeKeyword runs a raw keyword through the registered analyzer,
// returning the ordered term texts. A CJK keyword typically yields several
// bigram tokens; a Latin keyword yields one stemmed token.
func analyzeKeyword(analyzer analysis.Analyzer, keyword string) []string {
	stream := analyzer.Analyze([]byte(keyword))
	terms := make([]string, 0, len(stream))
	for _, token := range stream {
		if len(token.Term) == 0 {
			continue
		}
		terms = append(terms, string(token.Term))
	}
	return terms
}

// fieldQuery matches analyzed tokens against a text field: a single token
// becomes a term query, multiple tokens a positional phrase query.
func fieldQuery(field string, tokens []string) query.Query {
	switch len(tokens) {
	case 0:
		return nil
	case 1:
		return termQuery(field, tokens[0])
	default:
		return bleve.NewPhraseQuery(tokens, field)
	}
}

func termQuery(field, term string) *query.TermQuery {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}

// buildRangeQuery matches documents whose published OR updated timestamp
// falls inside the inclusive bounds. A post counts as in-range when it was
// either created or last touched inside the window.
func buildRangeQuery(r *search.TimeRange) query.Query {
	start, end := r.EpochBounds()
	if start == nil && end == nil {
		return nil
	}
	return bleve.NewDisjunctionQuery(
		epochRangeQuery(FieldPublished, start, end),
		epochRangeQuery(FieldUpdated, start, end),
	)
}

func epochRangeQuery(field string, start, end *int64) query.Query {
	var min, max *float64
	if start != nil {
		v := float64(*start)
		min = &v
	}
	if end != nil {
		v := float64(*end)
		max = &v
	}
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(min, max, &inclusive, &inclusive)
	q.SetField(field)
	return q
}
