package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/docstore/docstoretest"
)

func openTemp(t *testing.T) *DocumentStore {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "data", "matchfeed.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDocumentStoreContract(t *testing.T) {
	t.Parallel()

	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		return openTemp(t)
	})
}

func TestDocumentStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "matchfeed.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	if err := store.UpsertMany(ctx, []docstore.Document{
		{Collection: docstore.CollectionState, Key: "ingestion", Body: []byte(`{"status":"idle"}`)},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	doc, ok, err := reopened.Get(ctx, docstore.CollectionState, "ingestion")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(doc.Body) != `{"status":"idle"}` {
		t.Fatalf("unexpected body %s", doc.Body)
	}
}
