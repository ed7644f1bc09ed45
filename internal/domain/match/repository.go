package match

import (
	"context"
	"time"
)

// PruneFilter selects matches of one competition for deletion. Before removes
// matches whose match day is earlier than it; From/To (inclusive/exclusive)
// bound an in-window sweep that spares KeepIDs. Admin-curated matches are
// never selected.
type PruneFilter struct {
	CompetitionID string
	Before        *time.Time
	From          *time.Time
	To            *time.Time
	KeepIDs       []string
}

// Repository persists canonical matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	ListByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]Match, error)
	ListCompetitionIDs(ctx context.Context) ([]string, error)
	UpsertMany(ctx context.Context, matches []Match) error
	Prune(ctx context.Context, filter PruneFilter) (int, error)
}
