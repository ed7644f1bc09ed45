package document

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
)

type MatchRepository struct {
	store docstore.Store
}

func NewMatchRepository(store docstore.Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	doc, ok, err := r.store.Get(ctx, docstore.CollectionMatches, id)
	if err != nil || !ok {
		return match.Match{}, ok, err
	}
	m, err := decodeMatch(doc)
	if err != nil {
		return match.Match{}, false, err
	}
	return m, true, nil
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]match.Match, error) {
	filter := docstore.Filter{
		Collection:    docstore.CollectionMatches,
		CompetitionID: competitionID,
		DateFrom:      datePtr(from),
		DateTo:        datePtr(to),
	}
	docs, err := r.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches competition=%s: %w", competitionID, err)
	}

	out := make([]match.Match, 0, len(docs))
	for _, doc := range docs {
		m, err := decodeMatch(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MatchRepository) ListCompetitionIDs(ctx context.Context) ([]string, error) {
	ids, err := r.store.Distinct(ctx, docstore.Filter{Collection: docstore.CollectionMatches}, docstore.FieldCompetitionID)
	if err != nil {
		return nil, fmt.Errorf("list match competitions: %w", err)
	}
	return ids, nil
}

func (r *MatchRepository) UpsertMany(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	docs := make([]docstore.Document, 0, len(matches))
	for _, m := range matches {
		if m.ID == "" {
			return fmt.Errorf("match id is required")
		}
		body, err := encode(docstore.CollectionMatches, m.ID, m)
		if err != nil {
			return err
		}
		docs = append(docs, docstore.Document{
			Collection:    docstore.CollectionMatches,
			Key:           m.ID,
			CompetitionID: m.CompetitionID,
			MatchID:       m.ID,
			Date:          datePtr(m.KickoffAt),
			AdminCurated:  m.CreatedByAdmin,
			Body:          body,
			UpdatedAt:     stamp(m.LastUpdated),
		})
	}
	if err := r.store.UpsertMany(ctx, docs); err != nil {
		return fmt.Errorf("upsert matches: %w", err)
	}
	return nil
}

// Prune maps the filter onto one delete per bound. Admin-curated documents
// are always excluded.
func (r *MatchRepository) Prune(ctx context.Context, filter match.PruneFilter) (int, error) {
	if filter.CompetitionID == "" {
		return 0, fmt.Errorf("prune requires a competition id")
	}

	total := 0
	if filter.Before != nil {
		n, err := r.store.DeleteMany(ctx, docstore.Filter{
			Collection:          docstore.CollectionMatches,
			CompetitionID:       filter.CompetitionID,
			DateTo:              filter.Before,
			ExcludeAdminCurated: true,
		})
		if err != nil {
			return total, fmt.Errorf("prune matches before window competition=%s: %w", filter.CompetitionID, err)
		}
		total += n
	}

	if filter.From != nil && filter.To != nil {
		n, err := r.store.DeleteMany(ctx, docstore.Filter{
			Collection:          docstore.CollectionMatches,
			CompetitionID:       filter.CompetitionID,
			DateFrom:            filter.From,
			DateTo:              filter.To,
			ExcludeKeys:         filter.KeepIDs,
			ExcludeAdminCurated: true,
		})
		if err != nil {
			return total, fmt.Errorf("prune matches in window competition=%s: %w", filter.CompetitionID, err)
		}
		total += n
	}
	return total, nil
}

func decodeMatch(doc docstore.Document) (match.Match, error) {
	m, err := decode[match.Match](doc)
	if err != nil {
		return match.Match{}, err
	}
	// The store flag wins; an admin may curate a record the pipeline created.
	m.CreatedByAdmin = m.CreatedByAdmin || doc.AdminCurated
	return m, nil
}
