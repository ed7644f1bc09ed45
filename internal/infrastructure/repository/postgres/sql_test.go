package postgres

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get document: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("pq: relation documents does not exist")) {
		t.Fatalf("expected unrelated error to be kept")
	}
}

func TestFilterConditionsPruneQuery(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	query, args, err := qb.DeleteFrom(documentsTable).Where(filterConditions(docstore.Filter{
		Collection:          docstore.CollectionMatches,
		CompetitionID:       "PL",
		DateFrom:            &from,
		DateTo:              &to,
		ExcludeKeys:         []string{"1", "2"},
		ExcludeAdminCurated: true,
	})...).ToSQL()
	if err != nil {
		t.Fatalf("build prune query: %v", err)
	}

	want := "DELETE FROM documents WHERE collection = $1 AND competition_id = $2 AND doc_date >= $3 AND doc_date < $4 AND doc_key <> ALL($5) AND admin_curated = $6"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 {
		t.Fatalf("unexpected args: %+v", args)
	}
	if _, ok := args[4].(driver.Valuer); !ok {
		t.Fatalf("expected array valuer for excluded keys, got %T", args[4])
	}
}

func TestUpsertQueryKeepsAdminFlagSticky(t *testing.T) {
	t.Parallel()

	query, _, err := qb.InsertModels(documentsTable, documentUpsertSuffix, documentInsertModel{Collection: "matches", Key: "1", Body: "{}"})
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}
	if want := "admin_curated = documents.admin_curated OR EXCLUDED.admin_curated"; !strings.Contains(query, want) {
		t.Fatalf("expected %q in %s", want, query)
	}
}

func TestLastPerKey(t *testing.T) {
	t.Parallel()

	docs := lastPerKey([]docstore.Document{
		{Collection: "matches", Key: "1", Body: []byte(`{"v":1}`)},
		{Collection: "matches", Key: "2"},
		{Collection: "matches", Key: "1", Body: []byte(`{"v":2}`)},
		{Collection: "news", Key: "1"},
	})
	if len(docs) != 3 || string(docs[0].Body) != `{"v":2}` {
		t.Fatalf("unexpected dedupe result: %+v", docs)
	}
}
