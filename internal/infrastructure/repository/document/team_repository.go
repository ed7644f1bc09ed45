package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

type TeamRepository struct {
	store docstore.Store
}

func NewTeamRepository(store docstore.Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) ListByCompetition(ctx context.Context, competitionID string) ([]team.Team, error) {
	docs, err := r.store.Find(ctx, docstore.Filter{Collection: docstore.CollectionRosters, CompetitionID: competitionID})
	if err != nil {
		return nil, fmt.Errorf("list rosters competition=%s: %w", competitionID, err)
	}
	out, err := decodeAll[team.Team](docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *TeamRepository) UpsertMany(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	docs := make([]docstore.Document, 0, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid team %q: %w", t.ID, err)
		}
		key := t.CompetitionID + ":" + t.ID
		body, err := encode(docstore.CollectionRosters, key, t)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection:    docstore.CollectionRosters,
			Key:           key,
			CompetitionID: t.CompetitionID,
			Body:          body,
			UpdatedAt:     stamp(t.UpdatedAt),
		})
	}
	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("upsert rosters: %w", err)
	}
	return nil
}
