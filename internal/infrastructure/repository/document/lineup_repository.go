package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
)

type LineupRepository struct {
	store docstore.Store
}

func NewLineupRepository(store docstore.Store) *LineupRepository {
	return &LineupRepository{store: store}
}

func (r *LineupRepository) ListByMatch(ctx context.Context, matchID string) ([]lineup.Lineup, error) {
	docs, err := r.store.Find(ctx, docstore.Filter{Collection: docstore.CollectionLineups, MatchID: matchID})
	if err != nil {
		return nil, fmt.Errorf("list lineups match=%s: %w", matchID, err)
	}
	out, err := decodeAll[lineup.Lineup](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Side < out[j].Side
	})
	return out, nil
}

func (r *LineupRepository) UpsertMany(ctx context.Context, lineups []lineup.Lineup) error {
	if len(lineups) == 0 {
		return nil
	}

	docs := make([]docstore.Document, 0, len(lineups))
	for _, l := range lineups {
		if l.MatchID == "" || l.TeamID == "" {
			return fmt.Errorf("lineup match id and team id are required")
		}
		key := l.Key()
		body, err := encode(docstore.CollectionLineups, key, l)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection: docstore.CollectionLineups,
			Key:        key,
			MatchID:    l.MatchID,
			Body:       body,
			UpdatedAt:  stamp(l.UpdatedAt),
		})
	}
	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("upsert lineups: %w", err)
	}
	return nil
}
