package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(id, title, content, category string, tags []string, published, updated time.Time) search.Document {
	doc := search.Document{
		ID:          id,
		Title:       title,
		Content:     content,
		URL:         id,
		Tags:        tags,
		Category:    category,
		PublishedAt: published,
		UpdatedAt:   updated,
	}
	doc.Checksum = search.ComputeChecksum(
		doc.ID, doc.Title, doc.Content, doc.URL,
		doc.Tags, doc.Category, doc.PublishedAt, doc.UpdatedAt,
	)
	return doc
}

func seedCorpus(t *testing.T, s *Store) {
	t.Helper()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
	docs := []search.Document{
		testDoc("https://blog.example.com/rust-async",
			"Async Rust in practice",
			"Notes on writing async Rust services with tokio and tracing.",
			"tech", []string{"Rust", "Async"},
			day(2019, 3, 1), day(2019, 6, 1)),
		testDoc("https://blog.example.com/go-channels",
			"Go channels explained",
			"Channels coordinate goroutines without explicit locks.",
			"tech", []string{"Go"},
			day(2020, 5, 10), day(2021, 1, 15)),
		testDoc("https://blog.example.com/reading-notes",
			"读书笔记：《售货员之死》",
			"这部戏剧讲述了一位售货员的悲剧故事，值得一读。",
			"share", []string{"读书"},
			day(2018, 9, 9), day(2018, 9, 9)),
	}
	if err := s.Upsert(docs); err != nil {
		t.Fatalf("seeding corpus: %v", err)
	}
}

func runSearch(t *testing.T, s *Store, q *search.Query, sort search.Sort) *search.Result {
	t.Helper()
	res, err := s.Search(q, 10, 0, sort)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	return res
}

func TestOpenCreatesThenReopens(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	seedCorpus(t, s)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopening index: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("doc count after reopen = %d, want 3", count)
	}
}

func TestSearchByTitleKeyword(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	res := runSearch(t, s, &search.Query{Keywords: []string{"channels"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Total)
	}
	hit := res.Hits[0]
	if hit.URL != "https://blog.example.com/go-channels" {
		t.Fatalf("hit url = %s", hit.URL)
	}
	if hit.ID != hit.URL {
		t.Fatalf("hit id %q should equal url %q", hit.ID, hit.URL)
	}
	if hit.Title == "" {
		t.Fatal("hit title is empty")
	}
}

func TestSearchConjunctiveKeywords(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	// Both keywords must match somewhere in the same document.
	res := runSearch(t, s, &search.Query{Keywords: []string{"async", "tokio"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Total)
	}

	res = runSearch(t, s, &search.Query{Keywords: []string{"async", "goroutines"}}, search.SortRelevance)
	if res.Total != 0 {
		t.Fatalf("total = %d, want 0 for keywords spanning documents", res.Total)
	}
}

func TestSearchKeywordMatchesTagsAndCategory(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	// A keyword equal to an exact tag value matches through the tags field.
	res := runSearch(t, s, &search.Query{Keywords: []string{"Rust"}}, search.SortRelevance)
	if res.Total == 0 {
		t.Fatal("keyword did not match tag")
	}

	res = runSearch(t, s, &search.Query{Keywords: []string{"share"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("keyword did not match category, total = %d", res.Total)
	}
}

func TestSearchTagAndCategoryFilters(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	res := runSearch(t, s, &search.Query{Tags: []string{"Go"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("tag filter total = %d, want 1", res.Total)
	}

	res = runSearch(t, s, &search.Query{Category: "share"}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("category filter total = %d, want 1", res.Total)
	}

	// Filters are conjunctive with keywords.
	res = runSearch(t, s, &search.Query{Keywords: []string{"channels"}, Category: "share"}, search.SortRelevance)
	if res.Total != 0 {
		t.Fatalf("conflicting keyword and category returned %d hits", res.Total)
	}
}

func TestSearchCJK(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	res := runSearch(t, s, &search.Query{Keywords: []string{"售货员"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("CJK keyword total = %d, want 1", res.Total)
	}
	if res.Hits[0].URL != "https://blog.example.com/reading-notes" {
		t.Fatalf("unexpected CJK hit %s", res.Hits[0].URL)
	}
}

func TestSearchTimeRange(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	// 2021 only touches go-channels through its updated timestamp.
	r, err := search.ParseTimeRange("2021-01-01~2021-12-31")
	if err != nil {
		t.Fatal(err)
	}
	res := runSearch(t, s, &search.Query{Range: r}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("range total = %d, want 1", res.Total)
	}
	if res.Hits[0].URL != "https://blog.example.com/go-channels" {
		t.Fatalf("range matched %s", res.Hits[0].URL)
	}

	// A range covering no timestamps matches nothing.
	r, err = search.ParseTimeRange("2025-01-01~2025-12-31")
	if err != nil {
		t.Fatal(err)
	}
	res = runSearch(t, s, &search.Query{Range: r}, search.SortRelevance)
	if res.Total != 0 {
		t.Fatalf("empty range total = %d, want 0", res.Total)
	}
}

func TestSortLatest(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	res := runSearch(t, s, &search.Query{}, search.SortLatest)
	if res.Total != 3 {
		t.Fatalf("total = %d, want 3", res.Total)
	}
	for i := 1; i < len(res.Hits); i++ {
		if res.Hits[i].UpdatedAt.After(res.Hits[i-1].UpdatedAt) {
			t.Fatalf("hits not ordered by updated desc: %v before %v",
				res.Hits[i-1].UpdatedAt, res.Hits[i].UpdatedAt)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	page, err := s.Search(&search.Query{}, 2, 0, search.SortLatest)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Hits) != 2 {
		t.Fatalf("page 1: total=%d hits=%d, want 3/2", page.Total, len(page.Hits))
	}

	rest, err := s.Search(&search.Query{}, 2, 2, search.SortLatest)
	if err != nil {
		t.Fatal(err)
	}
	if rest.Total != 3 || len(rest.Hits) != 1 {
		t.Fatalf("page 2: total=%d hits=%d, want 3/1", rest.Total, len(rest.Hits))
	}
	if rest.Hits[0].URL == page.Hits[0].URL || rest.Hits[0].URL == page.Hits[1].URL {
		t.Fatal("pages overlap")
	}
}

func TestSearchHighlights(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	res := runSearch(t, s, &search.Query{Keywords: []string{"goroutines"}}, search.SortRelevance)
	if res.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Total)
	}
	if !strings.Contains(res.Hits[0].Content, "<mark>") {
		t.Fatalf("content not highlighted: %q", res.Hits[0].Content)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := testDoc("https://blog.example.com/p", "First title", "body", "", nil, now, now)
	if err := s.Upsert([]search.Document{doc}); err != nil {
		t.Fatal(err)
	}

	doc = testDoc("https://blog.example.com/p", "Second title", "new body", "", nil, now, now.Add(time.Hour))
	if err := s.Upsert([]search.Document{doc}); err != nil {
		t.Fatal(err)
	}

	count, err := s.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("doc count = %d, want 1 after replace", count)
	}

	checksum, found, err := s.Checksum(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !found || checksum != doc.Checksum {
		t.Fatalf("checksum = %q found=%v, want updated checksum", checksum, found)
	}
}

func TestChecksumNotFound(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	_, found, err := s.Checksum("https://blog.example.com/missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("checksum reported found for missing document")
	}
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	seedCorpus(t, s)

	if err := s.DeleteAll(); err != nil {
		t.Fatal(err)
	}
	count, err := s.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("doc count = %d after DeleteAll", count)
	}

	res := runSearch(t, s, &search.Query{}, search.SortRelevance)
	if res.Total != 0 {
		t.Fatalf("search after DeleteAll returned %d hits", res.Total)
	}
}

func TestOpenRejectsCorruptDir(t *testing.T) {
	// A directory with a bogus metadata file must fail to open, not silently
	// recreate the index.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, metaFile), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir); err == nil {
		t.Fatal("expected error opening corrupt index directory")
	}
}
