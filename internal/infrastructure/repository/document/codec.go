// Package document implements the domain repositories on top of a
// docstore.Store. Bodies are the JSON encoding of the domain value.
package document

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
)

func encode(collection, key string, v any) ([]byte, error) {
	body, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	return body, nil
}

func decode[T any](doc docstore.Document) (T, error) {
	var out T
	if err := sonic.Unmarshal(doc.Body, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.Key, err)
	}
	return out, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
