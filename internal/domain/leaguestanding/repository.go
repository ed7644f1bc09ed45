package leaguestanding

import "context"

type Repository interface {
	ListByCompetition(ctx context.Context, competitionID string) ([]Standing, error)
	ReplaceByCompetition(ctx context.Context, competitionID string, standings []Standing) error
}
