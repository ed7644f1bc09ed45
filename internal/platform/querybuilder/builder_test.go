package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("collection", "doc_key").
		From("documents").
		Where(Eq("collection", "matches"), Gte("doc_date", from), Expr("doc_key <> ALL(?)", "keep")).
		OrderBy("doc_date", "doc_key").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT collection, doc_key FROM documents WHERE collection = $1 AND doc_date >= $2 AND doc_key <> ALL($3) ORDER BY doc_date, doc_key LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "matches" || args[2] != "keep" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectDistinctWithEmptyIn(t *testing.T) {
	t.Parallel()

	query, args, err := SelectDistinct("competition_id").
		From("documents").
		Where(Eq("collection", "matches"), InStrings("doc_key", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT DISTINCT competition_id FROM documents WHERE collection = $1 AND 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels(t *testing.T) {
	t.Parallel()

	type row struct {
		Collection string `db:"collection"`
		Key        string `db:"doc_key"`
		Skipped    string `db:"-"`
		hidden     string
	}

	query, args, err := InsertModels("documents", "ON CONFLICT (collection, doc_key) DO NOTHING",
		row{Collection: "matches", Key: "1", hidden: "x"},
		&row{Collection: "matches", Key: "2"},
	)
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO documents (collection, doc_key) VALUES ($1, $2), ($3, $4) ON CONFLICT (collection, doc_key) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[1] != "1" || args[3] != "2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelsRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertModels("documents", ""); err == nil {
		t.Fatalf("expected error for empty model list")
	}
}

func TestDeleteBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := DeleteFrom("documents").
		Where(Eq("collection", "matches"), Lt("doc_date", "2026-10-18"), Eq("admin_curated", false)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM documents WHERE collection = $1 AND doc_date < $2 AND admin_curated = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("documents").ToSQL(); err == nil {
		t.Fatalf("expected unconditioned delete to be rejected")
	}
}
