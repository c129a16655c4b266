// Package benchmark holds engine-level benchmarks that exercise query
// parsing, indexing, and search end to end against a throwaway on-disk index.
//
// Run with:
//
//	go test -bench=. -benchmem ./test/benchmark/...
package benchmark

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/index"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/parser"
)

var benchQueries = []struct {
	name  string
	query string
}{
	{"single_keyword", "rust"},
	{"multi_keyword", "rust async runtime tokio"},
	{"cjk", "售货员 读书"},
	{"filters", "Python range:2018-01-01~2020-01-01 tags:Rust,Go category:share"},
	{"max_keywords", strings.TrimSpace(strings.Repeat("word ", search.MaxKeywords))},
}

func BenchmarkQueryParse(b *testing.B) {
	for _, q := range benchQueries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(q.query); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func benchDoc(i int) search.Document {
	published := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%1000)
	doc := search.Document{
		ID:    fmt.Sprintf("https://blog.example.com/posts/%d", i),
		Title: fmt.Sprintf("Post %d about rust and async runtimes", i),
		Content: strings.Repeat(
			"Writing async services requires understanding executors, wakers, and the tokio runtime. ", 8) +
			"这篇文章也讨论了售货员的故事。",
		URL:         fmt.Sprintf("https://blog.example.com/posts/%d", i),
		Tags:        []string{"Rust", "Async"},
		Category:    "tech",
		PublishedAt: published,
		UpdatedAt:   published.AddDate(0, 1, 0),
	}
	doc.Checksum = search.ComputeChecksum(
		doc.ID, doc.Title, doc.Content, doc.URL,
		doc.Tags, doc.Category, doc.PublishedAt, doc.UpdatedAt,
	)
	return doc
}

func seededStore(b *testing.B, numDocs int) *index.Store {
	b.Helper()
	store, err := index.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { store.Close() })

	const batchSize = 500
	docs := make([]search.Document, 0, batchSize)
	for i := 0; i < numDocs; i++ {
		docs = append(docs, benchDoc(i))
		if len(docs) == batchSize {
			if err := store.Upsert(docs); err != nil {
				b.Fatal(err)
			}
			docs = docs[:0]
		}
	}
	if len(docs) > 0 {
		if err := store.Upsert(docs); err != nil {
			b.Fatal(err)
		}
	}
	return store
}

func BenchmarkUpsert(b *testing.B) {
	for _, batchSize := range []int{1, 100} {
		b.Run(fmt.Sprintf("batch_%d", batchSize), func(b *testing.B) {
			store, err := index.Open(b.TempDir())
			if err != nil {
				b.Fatal(err)
			}
			defer store.Close()

			docs := make([]search.Document, batchSize)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for j := range docs {
					docs[j] = benchDoc(i*batchSize + j)
				}
				if err := store.Upsert(docs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearch(b *testing.B) {
	store := seededStore(b, 2000)

	for _, q := range benchQueries {
		query, err := parser.Parse(q.query)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := store.Search(query, 20, 0, search.SortRelevance); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearchSortLatest(b *testing.B) {
	store := seededStore(b, 2000)
	query, err := parser.Parse("rust")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Search(query, 20, 0, search.SortLatest); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkChecksumLookup(b *testing.B) {
	store := seededStore(b, 2000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("https://blog.example.com/posts/%d", i%2000)
		if _, _, err := store.Checksum(id); err != nil {
			b.Fatal(err)
		}
	}
}
