package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusFinished  = "FINISHED"
)

// Provider names used in Match.Source and Match.ExternalRefs.
const (
	SourceFootballData = "football-data"
	SourceESPN         = "espn"
	SourceESPNCore     = "espn-core"
	SourceDerived      = "derived"
	SourceAdmin        = "admin"
)

// Match is the canonical record for one fixture. ID is the external id of the
// source that first sighted it and never changes afterwards.
type Match struct {
	ID              string            `json:"id"`
	Source          string            `json:"source,omitempty"`
	CompetitionID   string            `json:"competitionId"`
	CompetitionName string            `json:"competitionName,omitempty"`
	HomeTeam        TeamRef           `json:"homeTeam"`
	AwayTeam        TeamRef           `json:"awayTeam"`
	KickoffAt       time.Time         `json:"kickoffAt"`
	Status          string            `json:"status"`
	Score           Score             `json:"score"`
	Clock           string            `json:"clock,omitempty"`
	Venue           string            `json:"venue,omitempty"`
	Events          []Event           `json:"events,omitempty"`
	ExternalRefs    map[string]string `json:"externalRefs,omitempty"`
	// ExplicitFeed is set once any provider delivered real events for the
	// match; score-delta derivation stops from then on.
	ExplicitFeed   bool      `json:"explicitFeed,omitempty"`
	DetailsFinal   bool      `json:"detailsFinal,omitempty"`
	CreatedByAdmin bool      `json:"createdByAdmin,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

type TeamRef struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

func (t TeamRef) IsZero() bool {
	return t.ID == "" && t.Name == ""
}

// Score holds nil sides until a provider reports them.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (s Score) Known() bool {
	return s.Home != nil && s.Away != nil
}

// Values returns the score with unknown sides as zero.
func (s Score) Values() (int, int) {
	var home, away int
	if s.Home != nil {
		home = *s.Home
	}
	if s.Away != nil {
		away = *s.Away
	}
	return home, away
}

func NewScore(home, away int) Score {
	return Score{Home: &home, Away: &away}
}

// NormalizeStatus uppercases provider values and folds LIVE into IN_PLAY.
// Unknown values are kept as reported.
func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	switch status {
	case "":
		return StatusScheduled
	case "LIVE":
		return StatusInPlay
	default:
		return status
	}
}

func IsLive(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInPlay, StatusPaused:
		return true
	default:
		return false
	}
}

func IsFinished(status string) bool {
	return NormalizeStatus(status) == StatusFinished
}

// MatchDay truncates the kickoff to its UTC date.
func (m Match) MatchDay() time.Time {
	k := m.KickoffAt.UTC()
	return time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, time.UTC)
}

// SideOf maps a team id to its side in this match.
func (m Match) SideOf(teamID string) Side {
	switch {
	case teamID == "":
		return SideUnknown
	case teamID == m.HomeTeam.ID:
		return SideHome
	case teamID == m.AwayTeam.ID:
		return SideAway
	default:
		return SideUnknown
	}
}

// TeamSides returns the team-id to side map used by event normalizers.
func (m Match) TeamSides() map[string]Side {
	sides := make(map[string]Side, 2)
	if m.HomeTeam.ID != "" {
		sides[m.HomeTeam.ID] = SideHome
	}
	if m.AwayTeam.ID != "" {
		sides[m.AwayTeam.ID] = SideAway
	}
	return sides
}

func (m Match) ExternalID(provider string) string {
	if m.ExternalRefs == nil {
		return ""
	}
	return m.ExternalRefs[provider]
}
