package match

import (
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
)

type Side string

const (
	SideHome    Side = "home"
	SideAway    Side = "away"
	SideUnknown Side = ""
)

func (s Side) Opposite() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideUnknown
	}
}

type EventKind string

const (
	KindGoal         EventKind = "goal"
	KindPenalty      EventKind = "penalty"
	KindOwnGoal      EventKind = "own_goal"
	KindYellowCard   EventKind = "yellow_card"
	KindSecondYellow EventKind = "second_yellow"
	KindRedCard      EventKind = "red_card"
	KindSubstitution EventKind = "substitution"
	KindSave         EventKind = "save"
	KindCornerKick   EventKind = "corner_kick"
	KindFreeKick     EventKind = "free_kick"
	KindOffside      EventKind = "offside"
	KindFoul         EventKind = "foul"
	KindHalfTime     EventKind = "half_time"
	KindMatchStart   EventKind = "match_start"
	KindMatchEnd     EventKind = "match_end"
	KindOther        EventKind = "other"
)

// IsScoring reports kinds that move the score.
func (k EventKind) IsScoring() bool {
	switch k {
	case KindGoal, KindPenalty, KindOwnGoal:
		return true
	default:
		return false
	}
}

// Event.Side is the side credited by the event; for own goals that is the
// team awarded the goal.
type Event struct {
	ID          string    `json:"id,omitempty"`
	MatchID     string    `json:"matchId"`
	Kind        EventKind `json:"type"`
	Minute      *int      `json:"minute,omitempty"`
	ExtraMinute *int      `json:"extraMinute,omitempty"`
	Clock       string    `json:"clock,omitempty"`
	Side        Side      `json:"side,omitempty"`
	TeamID      string    `json:"teamId,omitempty"`
	Player      string    `json:"player,omitempty"`
	Assist      string    `json:"assist,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	Derived     bool      `json:"derived,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DedupKey identifies the underlying occurrence across fetches: the provider
// id when there is one, otherwise folded description plus clock text.
func (e Event) DedupKey() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return "id:" + id
	}
	return "tx:" + textnorm.Key(e.Description) + "|" + strings.TrimSpace(e.Clock)
}
