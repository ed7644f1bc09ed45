package document

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
)

type StatisticsRepository struct {
	store docstore.Store
}

func NewStatisticsRepository(store docstore.Store) *StatisticsRepository {
	return &StatisticsRepository{store: store}
}

func (r *StatisticsRepository) Get(ctx context.Context, matchID string) (matchstats.Statistics, bool, error) {
	doc, ok, err := r.store.Get(ctx, docstore.CollectionStatistics, matchID)
	if err != nil || !ok {
		return matchstats.Statistics{}, ok, err
	}
	stats, err := decode[matchstats.Statistics](doc)
	if err != nil {
		return matchstats.Statistics{}, false, err
	}
	return stats, true, nil
}

// Upsert normalizes before writing so stored statistics always satisfy the
// non-negative and possession-sum rules.
func (r *StatisticsRepository) Upsert(ctx context.Context, stats matchstats.Statistics) error {
	if stats.MatchID == "" {
		return fmt.Errorf("statistics match id is required")
	}
	stats = stats.Normalize()
	body, err := encode(docstore.CollectionStatistics, stats.MatchID, stats)
	if err != nil {
		return err
	}
	return r.store.UpsertMany(ctx, []docstore.Document{{
		Collection: docstore.CollectionStatistics,
		Key:        stats.MatchID,
		MatchID:    stats.MatchID,
		Body:       body,
		UpdatedAt:  stamp(stats.UpdatedAt),
	}})
}
