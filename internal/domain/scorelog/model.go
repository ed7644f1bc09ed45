package scorelog

import (
	"context"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
)

// Entry audits one scoring event together with the score after it.
type Entry struct {
	ID            string          `json:"id"`
	MatchID       string          `json:"matchId"`
	CompetitionID string          `json:"competitionId"`
	EventKey      string          `json:"eventKey"`
	Kind          match.EventKind `json:"kind"`
	Side          match.Side      `json:"side"`
	Minute        *int            `json:"minute,omitempty"`
	Player        string          `json:"player,omitempty"`
	Score         Snapshot        `json:"score"`
	Derived       bool            `json:"derived"`
	Source        string          `json:"source,omitempty"`
	RecordedAt    time.Time       `json:"recordedAt"`
}

type Snapshot struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Repository interface {
	Append(ctx context.Context, entries []Entry) error
	ListByMatch(ctx context.Context, matchID string) ([]Entry, error)
}
