package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

// Competition is one configured league. Code is the canonical competition id
// (the football-data code); LeagueSlug addresses the same league on ESPN.
type Competition struct {
	Code       string
	LeagueSlug string
	Name       string
}

// ParseCompetitions reads "PL:eng.1,SA:ita.1". A missing slug leaves
// LeagueSlug empty and ESPN sources skip that competition.
func ParseCompetitions(value string) []Competition {
	out := make([]Competition, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, slug, _ := strings.Cut(part, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, Competition{Code: code, LeagueSlug: strings.TrimSpace(slug)})
	}
	return out
}

// MatchDetail is what one provider knows about a single match beyond the
// schedule row. Any part may be empty.
type MatchDetail struct {
	Source string
	// Match carries refreshed header fields (status, score, clock, refs).
	Match      *match.Match
	Events     []match.Event
	Commentary []commentary.RawEntry
	Lineups    []lineup.Lineup
	Statistics *matchstats.Statistics
	Highlights []news.Item
}

func (d MatchDetail) Empty() bool {
	return d.Match == nil && len(d.Events) == 0 && len(d.Commentary) == 0 &&
		len(d.Lineups) == 0 && d.Statistics == nil && len(d.Highlights) == 0
}

// MatchProvider lists the schedule of a competition for [from, to).
type MatchProvider interface {
	Name() string
	FetchMatches(ctx context.Context, comp Competition, from, to time.Time) ([]match.Match, error)
}

type DetailProvider interface {
	Name() string
	FetchMatchDetail(ctx context.Context, comp Competition, m match.Match) (MatchDetail, error)
}

type StandingsProvider interface {
	FetchStandings(ctx context.Context, comp Competition) ([]leaguestanding.Standing, error)
}

type RosterProvider interface {
	FetchTeams(ctx context.Context, comp Competition) ([]team.Team, error)
}

type NewsProvider interface {
	FetchNews(ctx context.Context, comp Competition) ([]news.Item, error)
}
