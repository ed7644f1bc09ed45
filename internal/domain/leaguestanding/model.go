package leaguestanding

import "time"

// Standing is one row of a competition table.
type Standing struct {
	CompetitionID  string     `json:"competitionId"`
	Group          string     `json:"group,omitempty"`
	TeamID         string     `json:"teamId"`
	TeamName       string     `json:"teamName"`
	Crest          string     `json:"crest,omitempty"`
	Position       int        `json:"position"`
	Played         int        `json:"played"`
	Won            int        `json:"won"`
	Draw           int        `json:"draw"`
	Lost           int        `json:"lost"`
	GoalsFor       int        `json:"goalsFor"`
	GoalsAgainst   int        `json:"goalsAgainst"`
	GoalDifference int        `json:"goalDifference"`
	Points         int        `json:"points"`
	Form           string     `json:"form,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Key is unique within a competition even for tables split into groups.
func (s Standing) Key() string {
	if s.Group == "" {
		return s.TeamID
	}
	return s.Group + ":" + s.TeamID
}
