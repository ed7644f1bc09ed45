package matchstats

import (
	"context"
	"time"
)

// Pair is a home/away numeric statistic.
type Pair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (p Pair) IsZero() bool {
	return p.Home == 0 && p.Away == 0
}

// Statistics is the team statistics sheet of one match.
type Statistics struct {
	MatchID       string `json:"matchId"`
	Possession    Pair   `json:"possession"`
	Shots         Pair   `json:"shots"`
	ShotsOnTarget Pair   `json:"shotsOnTarget"`
	Corners       Pair   `json:"corners"`
	Fouls         Pair   `json:"fouls"`
	YellowCards   Pair   `json:"yellowCards"`
	RedCards      Pair   `json:"redCards"`
	Offsides      Pair   `json:"offsides"`
	Saves         Pair   `json:"saves"`
	// PossessionFilled marks a possession pair set by Normalize rather than
	// reported by a provider.
	PossessionFilled bool      `json:"possessionFilled,omitempty"`
	Source           string    `json:"source,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (s *Statistics) counters() []*Pair {
	return []*Pair{&s.Shots, &s.ShotsOnTarget, &s.Corners, &s.Fouls, &s.YellowCards, &s.RedCards, &s.Offsides, &s.Saves}
}

// Normalize clamps counters at zero and projects possession so that home is
// in [0,100] and away is 100 - home. A missing pair is split evenly and the
// sheet stays Incomplete.
func (s Statistics) Normalize() Statistics {
	for _, p := range s.counters() {
		p.Home = max(p.Home, 0)
		p.Away = max(p.Away, 0)
	}
	if s.Possession.IsZero() {
		s.PossessionFilled = true
	}
	s.Possession = NormalizePossession(s.Possession)
	return s
}

// NormalizePossession keeps home in [0,100] and sets away to the rest. An
// unreported pair splits evenly.
func NormalizePossession(p Pair) Pair {
	if p.IsZero() {
		return Pair{Home: 50, Away: 50}
	}
	home := min(max(p.Home, 0), 100)
	return Pair{Home: home, Away: 100 - home}
}

// Incomplete reports a sheet without provider possession data, the tell of a
// provider that has not published the sheet yet.
func (s Statistics) Incomplete() bool {
	return s.PossessionFilled || s.Possession.IsZero()
}

type Repository interface {
	Get(ctx context.Context, matchID string) (Statistics, bool, error)
	Upsert(ctx context.Context, stats Statistics) error
}
