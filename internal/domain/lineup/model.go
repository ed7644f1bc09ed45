package lineup

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
)

// Lineup is one team's sheet for one match.
type Lineup struct {
	MatchID     string     `json:"matchId"`
	TeamID      string     `json:"teamId"`
	TeamName    string     `json:"teamName,omitempty"`
	Side        match.Side `json:"side,omitempty"`
	Formation   string     `json:"formation,omitempty"`
	Starters    []Player   `json:"starters"`
	Substitutes []Player   `json:"substitutes"`
	Source      string     `json:"source,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Player struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	Jersey    string `json:"jersey,omitempty"`
	SubbedIn  bool   `json:"subbedIn,omitempty"`
	SubbedOut bool   `json:"subbedOut,omitempty"`
}

// Key identifies the lineup within its match.
func (l Lineup) Key() string {
	return l.MatchID + ":" + l.TeamID
}

// Incomplete reports a sheet without starters.
func (l Lineup) Incomplete() bool {
	return len(l.Starters) == 0
}

type legacyPlayer struct {
	Player
	Starter bool `json:"starter"`
}

// UnmarshalJSON also accepts the older shape that carried one players[] list
// with a starter flag per entry.
func (l *Lineup) UnmarshalJSON(data []byte) error {
	type plain Lineup
	var decoded struct {
		plain
		Players []legacyPlayer `json:"players"`
	}
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*l = Lineup(decoded.plain)
	if len(l.Starters) == 0 && len(l.Substitutes) == 0 && len(decoded.Players) > 0 {
		l.Starters, l.Substitutes = splitLegacy(decoded.Players)
	}
	return nil
}

// splitLegacy partitions flagged players into starters and substitutes.
func splitLegacy(players []legacyPlayer) (starters, substitutes []Player) {
	for _, p := range players {
		if p.Starter {
			starters = append(starters, p.Player)
		} else {
			substitutes = append(substitutes, p.Player)
		}
	}
	return starters, substitutes
}
