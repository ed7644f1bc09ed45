package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

const upsertBatchSize = 200

type DocumentStore struct {
	db *sqlx.DB
}

func NewDocumentStore(db *sqlx.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Get(ctx context.Context, collection, key string) (docstore.Document, bool, error) {
	query, args, err := qb.Select(documentColumns...).From(documentsTable).
		Where(qb.Eq("collection", collection), qb.Eq("doc_key", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return docstore.Document{}, false, fmt.Errorf("build get document query: %w", err)
	}

	var row documentTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return docstore.Document{}, false, nil
		}
		return docstore.Document{}, false, fmt.Errorf("get document %s/%s: %w", collection, key, err)
	}
	return row.toDomain(), true, nil
}

func (s *DocumentStore) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	query, args, err := qb.Select(documentColumns...).From(documentsTable).
		Where(filterConditions(filter)...).
		OrderBy("doc_date ASC NULLS LAST", "doc_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find documents query: %w", err)
	}

	var rows []documentTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find documents in %s: %w", filter.Collection, err)
	}

	out := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *DocumentStore) UpsertMany(ctx context.Context, docs []docstore.Document) error {
	docs = lastPerKey(docs)
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert documents: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(docs); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(docs))
		models := make([]any, 0, end-start)
		for _, doc := range docs[start:end] {
			if doc.Collection == "" || doc.Key == "" {
				return fmt.Errorf("document collection and key are required")
			}
			models = append(models, documentInsertModel{
				Collection:    doc.Collection,
				Key:           doc.Key,
				CompetitionID: doc.CompetitionID,
				MatchID:       doc.MatchID,
				Date:          doc.Date,
				AdminCurated:  doc.AdminCurated,
				Body:          string(doc.Body),
				UpdatedAt:     doc.UpdatedAt,
			})
		}

		query, args, err := qb.InsertModels(documentsTable, documentUpsertSuffix, models...)
		if err != nil {
			return fmt.Errorf("build upsert documents query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert documents batch=%d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert documents tx: %w", err)
	}
	return nil
}

func (s *DocumentStore) Distinct(ctx context.Context, filter docstore.Filter, field string) ([]string, error) {
	column, ok := distinctColumns[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not indexed", field)
	}

	conditions := append(filterConditions(filter), qb.Expr(column+" <> ''"))
	query, args, err := qb.SelectDistinct(column).From(documentsTable).
		Where(conditions...).
		OrderBy(column).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distinct query: %w", err)
	}

	var out []string
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("distinct %s in %s: %w", field, filter.Collection, err)
	}
	return out, nil
}

func (s *DocumentStore) DeleteMany(ctx context.Context, filter docstore.Filter) (int, error) {
	query, args, err := qb.DeleteFrom(documentsTable).Where(filterConditions(filter)...).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete documents query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete documents in %s: %w", filter.Collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// lastPerKey drops earlier duplicates of a key; Postgres rejects an upsert
// statement that touches the same row twice.
func lastPerKey(docs []docstore.Document) []docstore.Document {
	index := make(map[string]int, len(docs))
	out := make([]docstore.Document, 0, len(docs))
	for _, doc := range docs {
		k := doc.Collection + "\x00" + doc.Key
		if i, ok := index[k]; ok {
			out[i] = doc
			continue
		}
		index[k] = len(out)
		out = append(out, doc)
	}
	return out
}

var distinctColumns = map[string]string{
	docstore.FieldCompetitionID: "competition_id",
	docstore.FieldMatchID:       "match_id",
}

func filterConditions(f docstore.Filter) []qb.Condition {
	conds := []qb.Condition{qb.Eq("collection", f.Collection)}
	if len(f.Keys) > 0 {
		conds = append(conds, qb.InStrings("doc_key", f.Keys))
	}
	if f.CompetitionID != "" {
		conds = append(conds, qb.Eq("competition_id", f.CompetitionID))
	}
	if f.MatchID != "" {
		conds = append(conds, qb.Eq("match_id", f.MatchID))
	}
	if f.DateFrom != nil {
		conds = append(conds, qb.Gte("doc_date", f.DateFrom.UTC()))
	}
	if f.DateTo != nil {
		conds = append(conds, qb.Lt("doc_date", f.DateTo.UTC()))
	}
	if len(f.ExcludeKeys) > 0 {
		conds = append(conds, qb.Expr("doc_key <> ALL(?)", pq.Array(f.ExcludeKeys)))
	}
	if f.ExcludeAdminCurated {
		conds = append(conds, qb.Eq("admin_curated", false))
	}
	return conds
}

func (m documentTableModel) toDomain() docstore.Document {
	return docstore.Document{
		Collection:    m.Collection,
		Key:           m.Key,
		CompetitionID: m.CompetitionID,
		MatchID:       m.MatchID,
		Date:          nullTimeToTimePtr(m.Date),
		AdminCurated:  m.AdminCurated,
		Body:          m.Body,
		UpdatedAt:     m.UpdatedAt,
	}
}
