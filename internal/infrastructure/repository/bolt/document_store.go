// Package bolt stores documents in a single bbolt file, one bucket per
// collection. It serves single-node deployments that do not run Postgres.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"go.etcd.io/bbolt"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
)

type storedDocument struct {
	CompetitionID string     `json:"competition_id,omitempty"`
	MatchID       string     `json:"match_id,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	AdminCurated  bool       `json:"admin_curated,omitempty"`
	Body          []byte     `json:"body"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type DocumentStore struct {
	db *bbolt.DB
}

func Open(path string) (*DocumentStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store at %s: %w", path, err)
	}
	return &DocumentStore{db: db}, nil
}

func (s *DocumentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *DocumentStore) Get(_ context.Context, collection, key string) (docstore.Document, bool, error) {
	var (
		doc   docstore.Document
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}

		decoded, err := decode(collection, key, data)
		if err != nil {
			return err
		}
		doc, found = decoded, true
		return nil
	})
	if err != nil {
		return docstore.Document{}, false, fmt.Errorf("get document %s/%s: %w", collection, key, err)
	}
	return doc, found, nil
}

func (s *DocumentStore) Find(_ context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	out := make([]docstore.Document, 0)
	err := s.scan(filter, func(doc docstore.Document) error {
		out = append(out, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find documents in %s: %w", filter.Collection, err)
	}
	docstore.Sort(out)
	return out, nil
}

func (s *DocumentStore) UpsertMany(_ context.Context, docs []docstore.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, doc := range docs {
		if doc.Collection == "" || doc.Key == "" {
			return fmt.Errorf("document collection and key are required")
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, doc := range docs {
			bucket, err := tx.CreateBucketIfNotExists([]byte(doc.Collection))
			if err != nil {
				return fmt.Errorf("create bucket %s: %w", doc.Collection, err)
			}

			if existing := bucket.Get([]byte(doc.Key)); existing != nil {
				prev, err := decode(doc.Collection, doc.Key, existing)
				if err != nil {
					return err
				}
				doc.AdminCurated = doc.AdminCurated || prev.AdminCurated
			}

			data, err := sonic.Marshal(storedDocument{
				CompetitionID: doc.CompetitionID,
				MatchID:       doc.MatchID,
				Date:          doc.Date,
				AdminCurated:  doc.AdminCurated,
				Body:          doc.Body,
				UpdatedAt:     doc.UpdatedAt,
			})
			if err != nil {
				return fmt.Errorf("encode document %s/%s: %w", doc.Collection, doc.Key, err)
			}
			if err := bucket.Put([]byte(doc.Key), data); err != nil {
				return fmt.Errorf("put document %s/%s: %w", doc.Collection, doc.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

func (s *DocumentStore) Distinct(_ context.Context, filter docstore.Filter, field string) ([]string, error) {
	if _, ok := (docstore.Document{}).FieldValue(field); !ok {
		return nil, fmt.Errorf("field %q is not indexed", field)
	}

	seen := make(map[string]struct{})
	err := s.scan(filter, func(doc docstore.Document) error {
		if value, _ := doc.FieldValue(field); value != "" {
			seen[value] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("distinct %s in %s: %w", field, filter.Collection, err)
	}

	out := make([]string, 0, len(seen))
	for value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out, nil
}

func (s *DocumentStore) DeleteMany(_ context.Context, filter docstore.Filter) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filter.Collection))
		if bucket == nil {
			return nil
		}

		// bbolt cursors must not be mutated mid-iteration.
		var keys [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			doc, err := decode(filter.Collection, string(k), v)
			if err != nil {
				return err
			}
			if filter.Matches(doc) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		deleted = len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete documents in %s: %w", filter.Collection, err)
	}
	return deleted, nil
}

func (s *DocumentStore) scan(filter docstore.Filter, fn func(docstore.Document) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filter.Collection))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			doc, err := decode(filter.Collection, string(k), v)
			if err != nil {
				return err
			}
			if !filter.Matches(doc) {
				return nil
			}
			return fn(doc)
		})
	})
}

// decode must copy strings out of the mmap page: bbolt values are only valid
// inside the transaction.
func decode(collection, key string, data []byte) (docstore.Document, error) {
	var stored storedDocument
	if err := sonic.ConfigStd.Unmarshal(data, &stored); err != nil {
		return docstore.Document{}, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return docstore.Document{
		Collection:    collection,
		Key:           key,
		CompetitionID: stored.CompetitionID,
		MatchID:       stored.MatchID,
		Date:          stored.Date,
		AdminCurated:  stored.AdminCurated,
		Body:          stored.Body,
		UpdatedAt:     stored.UpdatedAt,
	}, nil
}
