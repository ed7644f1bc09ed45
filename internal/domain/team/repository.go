package team

import "context"

// Repository stores competition rosters.
type Repository interface {
	ListByCompetition(ctx context.Context, competitionID string) ([]Team, error)
	UpsertMany(ctx context.Context, teams []Team) error
}
