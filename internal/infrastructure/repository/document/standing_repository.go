package document

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
)

type StandingRepository struct {
	store docstore.Store
}

func NewStandingRepository(store docstore.Store) *StandingRepository {
	return &StandingRepository{store: store}
}

func (r *StandingRepository) ListByCompetition(ctx context.Context, competitionID string) ([]leaguestanding.Standing, error) {
	docs, err := r.store.Find(ctx, docstore.Filter{Collection: docstore.CollectionStandings, CompetitionID: competitionID})
	if err != nil {
		return nil, fmt.Errorf("list standings competition=%s: %w", competitionID, err)
	}
	out, err := decodeAll[leaguestanding.Standing](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// ReplaceByCompetition swaps the whole table. An empty input leaves the stored
// table untouched so a failed fetch cannot blank it.
func (r *StandingRepository) ReplaceByCompetition(ctx context.Context, competitionID string, standings []leaguestanding.Standing) error {
	if competitionID == "" {
		return fmt.Errorf("competition id is required")
	}
	if len(standings) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]docstore.Document, 0, len(standings))
	keys := make([]string, 0, len(standings))
	for _, s := range standings {
		s.CompetitionID = competitionID
		key := competitionID + ":" + s.Key()
		body, err := encode(docstore.CollectionStandings, key, s)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection:    docstore.CollectionStandings,
			Key:           key,
			CompetitionID: competitionID,
			Body:          body,
			UpdatedAt:     now,
		})
		keys = append(keys, key)
	}

	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("upsert standings competition=%s: %w", competitionID, err)
	}
	if _, err := r.store.DeleteMany(ctx, docstore.Filter{
		Collection:    docstore.CollectionStandings,
		CompetitionID: competitionID,
		ExcludeKeys:   keys,
	}); err != nil {
		return fmt.Errorf("drop stale standings competition=%s: %w", competitionID, err)
	}
	return nil
}
