package search

import (
	"testing"
	"time"
)

var (
	testPublished = time.Date(2020, 3, 14, 9, 26, 53, 0, time.UTC)
	testUpdated   = time.Date(2021, 6, 2, 18, 0, 0, 0, time.UTC)
)

func TestComputeChecksumDeterministic(t *testing.T) {
	a := ComputeChecksum("id", "title", "content", "https://example.com/p", []string{"go", "search"}, "tech", testPublished, testUpdated)
	b := ComputeChecksum("id", "title", "content", "https://example.com/p", []string{"go", "search"}, "tech", testPublished, testUpdated)
	if a != b {
		t.Fatalf("checksum not deterministic: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestComputeChecksumFieldSensitivity(t *testing.T) {
	base := ComputeChecksum("id", "title", "content", "url", []string{"a"}, "cat", testPublished, testUpdated)

	variants := map[string]string{
		"id":        ComputeChecksum("id2", "title", "content", "url", []string{"a"}, "cat", testPublished, testUpdated),
		"title":     ComputeChecksum("id", "title2", "content", "url", []string{"a"}, "cat", testPublished, testUpdated),
		"content":   ComputeChecksum("id", "title", "content2", "url", []string{"a"}, "cat", testPublished, testUpdated),
		"url":       ComputeChecksum("id", "title", "content", "url2", []string{"a"}, "cat", testPublished, testUpdated),
		"tags":      ComputeChecksum("id", "title", "content", "url", []string{"b"}, "cat", testPublished, testUpdated),
		"category":  ComputeChecksum("id", "title", "content", "url", []string{"a"}, "cat2", testPublished, testUpdated),
		"published": ComputeChecksum("id", "title", "content", "url", []string{"a"}, "cat", testPublished.Add(time.Second), testUpdated),
		"updated":   ComputeChecksum("id", "title", "content", "url", []string{"a"}, "cat", testPublished, testUpdated.Add(time.Second)),
	}
	for field, sum := range variants {
		if sum == base {
			t.Errorf("changing %s did not change the checksum", field)
		}
	}
}

func TestComputeChecksumTagBoundaries(t *testing.T) {
	// The NUL separator keeps adjacent tags from merging into the same digest.
	a := ComputeChecksum("id", "t", "c", "u", []string{"ab", "c"}, "", testPublished, testUpdated)
	b := ComputeChecksum("id", "t", "c", "u", []string{"a", "bc"}, "", testPublished, testUpdated)
	if a == b {
		t.Fatal("tag boundary shift produced identical checksums")
	}
}

func TestQueryIsEmpty(t *testing.T) {
	q := &Query{}
	if !q.IsEmpty() {
		t.Fatal("zero query should be empty")
	}
	q.Tags = []string{"go"}
	if q.IsEmpty() {
		t.Fatal("query with tags should not be empty")
	}
}

func TestParseSort(t *testing.T) {
	if got := ParseSort("latest"); got != SortLatest {
		t.Fatalf("ParseSort(latest) = %v", got)
	}
	if got := ParseSort(""); got != SortRelevance {
		t.Fatalf("ParseSort(empty) = %v", got)
	}
	if got := ParseSort("nonsense"); got != SortRelevance {
		t.Fatalf("ParseSort(nonsense) = %v", got)
	}
	if SortLatest.String() != "latest" || SortRelevance.String() != "relevance" {
		t.Fatal("Sort.String mismatch")
	}
}
