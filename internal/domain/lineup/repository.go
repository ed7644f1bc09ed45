package lineup

import "context"

// Repository persists lineups keyed by (match, team).
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Lineup, error)
	UpsertMany(ctx context.Context, lineups []Lineup) error
}
