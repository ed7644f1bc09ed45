package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/scorelog"
)

type ScoreLogRepository struct {
	store docstore.Store
}

func NewScoreLogRepository(store docstore.Store) *ScoreLogRepository {
	return &ScoreLogRepository{store: store}
}

// Append is idempotent per entry id.
func (r *ScoreLogRepository) Append(ctx context.Context, entries []scorelog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]docstore.Document, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.MatchID == "" {
			return fmt.Errorf("score log id and match id are required")
		}
		body, err := encode(docstore.CollectionScoreLog, e.ID, e)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection:    docstore.CollectionScoreLog,
			Key:           e.ID,
			CompetitionID: e.CompetitionID,
			MatchID:       e.MatchID,
			Date:          datePtr(e.RecordedAt),
			Body:          body,
			UpdatedAt:     stamp(e.RecordedAt),
		})
	}
	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("append score log: %w", err)
	}
	return nil
}

// ListByMatch returns entries in scoring order: by record time, then by the
// running total, which grows by one per entry within a cycle.
func (r *ScoreLogRepository) ListByMatch(ctx context.Context, matchID string) ([]scorelog.Entry, error) {
	docs, err := r.store.Find(ctx, docstore.Filter{Collection: docstore.CollectionScoreLog, MatchID: matchID})
	if err != nil {
		return nil, fmt.Errorf("list score log match=%s: %w", matchID, err)
	}
	out, err := decodeAll[scorelog.Entry](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.RecordedAt.Equal(b.RecordedAt) {
			return a.RecordedAt.Before(b.RecordedAt)
		}
		return a.Score.Home+a.Score.Away < b.Score.Home+b.Score.Away
	})
	return out, nil
}
