package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
)

// metaFile is the marker bleve writes on index creation. Its presence
// decides between opening an existing index and creating a fresh one.
const metaFile = "index_meta.json"

// deleteAllPageSize bounds how many document IDs DeleteAll collects per
// match-all pass.
const deleteAllPageSize = 1000

// Store owns the on-disk search index. It is safe for concurrent use: any
// number of searches and checksum lookups may run at once, while document
// mutations are serialized through a single writer. A directory must not be
// opened for writing by more than one Store at a time.
//
// Visibility is eventual: a batch that has been committed becomes visible to
// searches shortly after, not atomically with the commit returning. Callers
// that need read-your-own-writes must treat upsert-then-search as eventually
// consistent.
type Store struct {
	idx      bleve.Index
	path     string
	analyzer analysis.Analyzer
	writeMu  sync.Mutex
	logger   *slog.Logger
}

// Open opens the index at dir, creating directory and index on first use.
// Reopening validates the persisted schema against the expected fields and
// fails fast on any mismatch.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory %s: %w", dir, err)
	}

	var idx bleve.Index
	if _, err := os.Stat(filepath.Join(dir, metaFile)); err == nil {
		idx, err = bleve.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("opening index at %s: %w", dir, err)
		}
	} else if os.IsNotExist(err) {
		m, err := buildIndexMapping()
		if err != nil {
			return nil, err
		}
		idx, err = bleve.New(dir, m)
		if err != nil {
			return nil, fmt.Errorf("creating index at %s: %w", dir, err)
		}
	} else {
		return nil, fmt.Errorf("probing index metadata at %s: %w", dir, err)
	}

	if err := validateMapping(idx.Mapping()); err != nil {
		idx.Close()
		return nil, err
	}
	analyzer := idx.Mapping().AnalyzerNamed(AnalyzerName)
	if analyzer == nil {
		idx.Close()
		return nil, fmt.Errorf("%w: %s", ErrMissingTokenizer, AnalyzerName)
	}

	s := &Store{
		idx:      idx,
		path:     dir,
		analyzer: analyzer,
		logger:   slog.Default().With("component", "index-store"),
	}
	count, err := idx.DocCount()
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	s.logger.Info("index opened", "path", dir, "docs", count)
	return s, nil
}

// Upsert replaces each document by ID and commits the whole batch at once.
// Deletion and insertion of the same ID happen within the single commit, so
// readers never observe a half-written document.
func (s *Store) Upsert(docs []search.Document) error {
	if len(docs) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	batch := s.idx.NewBatch()
	for i := range docs {
		doc := &docs[i]
		if err := batch.Index(doc.ID, indexFields(doc)); err != nil {
			return fmt.Errorf("batching document %s: %w", doc.ID, err)
		}
	}
	if err := s.idx.Batch(batch); err != nil {
		return fmt.Errorf("committing upsert batch: %w", err)
	}
	s.logger.Info("documents upserted", "count", len(docs))
	return nil
}

// DeleteAll removes every document from the index. It sweeps match-all pages
// of IDs and deletes them batch by batch until the index is empty.
func (s *Store) DeleteAll() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed := 0
	for {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), deleteAllPageSize, 0, false)
		res, err := s.idx.Search(req)
		if err != nil {
			return fmt.Errorf("listing documents for delete: %w", err)
		}
		if len(res.Hits) == 0 {
			break
		}
		batch := s.idx.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := s.idx.Batch(batch); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}
		removed += len(res.Hits)
	}
	s.logger.Info("index cleared", "removed", removed)
	return nil
}

// Checksum looks up the stored checksum for the given document ID. The
// second return value is false when no such document exists. Ingestion uses
// this to skip re-indexing unchanged documents.
func (s *Store) Checksum(id string) (string, bool, error) {
	q := bleve.NewTermQuery(id)
	q.SetField(FieldID)
	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{FieldChecksum}

	res, err := s.idx.Search(req)
	if err != nil {
		return "", false, fmt.Errorf("checksum lookup for %s: %w", id, err)
	}
	if len(res.Hits) == 0 {
		return "", false, nil
	}
	checksum, ok := stringField(res.Hits[0].Fields, FieldChecksum)
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrMissingValue, FieldChecksum)
	}
	return checksum, true, nil
}

// DocCount returns the number of documents currently in the index.
func (s *Store) DocCount() (uint64, error) {
	count, err := s.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Path returns the index directory.
func (s *Store) Path() string {
	return s.path
}

// Close flushes and closes the underlying index.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.idx.Close()
}

// indexFields maps a domain document onto the schema fields. Category is
// omitted entirely when absent so that it stays optional in the stored
// document. Timestamps are indexed as epoch seconds.
func indexFields(doc *search.Document) map[string]interface{} {
	fields := map[string]interface{}{
		FieldID:        doc.ID,
		FieldTitle:     doc.Title,
		FieldContent:   doc.Content,
		FieldURL:       doc.URL,
		FieldTags:      doc.Tags,
		FieldPublished: doc.PublishedAt.Unix(),
		FieldUpdated:   doc.UpdatedAt.Unix(),
		FieldChecksum:  doc.Checksum,
	}
	if doc.Category != "" {
		fields[FieldCategory] = doc.Category
	}
	return fields
}
