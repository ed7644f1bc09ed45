package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
)

type NewsRepository struct {
	store docstore.Store
}

func NewNewsRepository(store docstore.Store) *NewsRepository {
	return &NewsRepository{store: store}
}

func (r *NewsRepository) UpsertMany(ctx context.Context, items []news.Item) error {
	if len(items) == 0 {
		return nil
	}

	docs := make([]docstore.Document, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("news item id is required")
		}
		key := item.Key()
		body, err := encode(docstore.CollectionNews, key, item)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection:    docstore.CollectionNews,
			Key:           key,
			CompetitionID: item.CompetitionID,
			MatchID:       item.MatchID,
			Date:          datePtr(item.PublishedAt),
			Body:          body,
			UpdatedAt:     stamp(item.PublishedAt),
		})
	}
	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("upsert news: %w", err)
	}
	return nil
}

func (r *NewsRepository) ListByCompetition(ctx context.Context, competitionID string) ([]news.Item, error) {
	return r.list(ctx, docstore.Filter{Collection: docstore.CollectionNews, CompetitionID: competitionID})
}

func (r *NewsRepository) ListByMatch(ctx context.Context, matchID string) ([]news.Item, error) {
	return r.list(ctx, docstore.Filter{Collection: docstore.CollectionNews, MatchID: matchID})
}

// list returns the newest items first.
func (r *NewsRepository) list(ctx context.Context, filter docstore.Filter) ([]news.Item, error) {
	docs, err := r.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	out, err := decodeAll[news.Item](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}
