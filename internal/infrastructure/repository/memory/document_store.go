package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
)

// DocumentStore keeps documents in process memory. It is the default store
// for local runs and the fixture for repository tests.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]docstore.Document
}

func NewDocumentStore(seed ...docstore.Document) *DocumentStore {
	s := &DocumentStore{docs: make(map[string]map[string]docstore.Document)}
	for _, doc := range seed {
		s.put(doc)
	}
	return s
}

func (s *DocumentStore) Get(_ context.Context, collection, key string) (docstore.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[collection][key]
	if !ok {
		return docstore.Document{}, false, nil
	}
	return clone(doc), true, nil
}

func (s *DocumentStore) Find(_ context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Document, 0)
	for _, doc := range s.docs[filter.Collection] {
		if filter.Matches(doc) {
			out = append(out, clone(doc))
		}
	}
	docstore.Sort(out)
	return out, nil
}

func (s *DocumentStore) UpsertMany(_ context.Context, docs []docstore.Document) error {
	for _, doc := range docs {
		if doc.Collection == "" || doc.Key == "" {
			return fmt.Errorf("document collection and key are required")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if existing, ok := s.docs[doc.Collection][doc.Key]; ok && existing.AdminCurated {
			doc.AdminCurated = true
		}
		s.put(doc)
	}
	return nil
}

func (s *DocumentStore) Distinct(_ context.Context, filter docstore.Filter, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, doc := range s.docs[filter.Collection] {
		if !filter.Matches(doc) {
			continue
		}
		value, ok := doc.FieldValue(field)
		if !ok {
			return nil, fmt.Errorf("field %q is not indexed", field)
		}
		if value != "" {
			seen[value] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out, nil
}

func (s *DocumentStore) DeleteMany(_ context.Context, filter docstore.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key, doc := range s.docs[filter.Collection] {
		if filter.Matches(doc) {
			delete(s.docs[filter.Collection], key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *DocumentStore) put(doc docstore.Document) {
	bucket, ok := s.docs[doc.Collection]
	if !ok {
		bucket = make(map[string]docstore.Document)
		s.docs[doc.Collection] = bucket
	}
	bucket[doc.Key] = clone(doc)
}

func clone(doc docstore.Document) docstore.Document {
	doc.Body = append([]byte(nil), doc.Body...)
	if doc.Date != nil {
		d := *doc.Date
		doc.Date = &d
	}
	return doc
}
