package team

import (
	"fmt"
	"time"
)

// Team is a club's roster within one competition.
type Team struct {
	ID            string        `json:"id"`
	CompetitionID string        `json:"competitionId"`
	Name          string        `json:"name"`
	Short         string        `json:"shortName,omitempty"`
	TLA           string        `json:"tla,omitempty"`
	Crest         string        `json:"crest,omitempty"`
	Venue         string        `json:"venue,omitempty"`
	Coach         string        `json:"coach,omitempty"`
	Squad         []SquadMember `json:"squad,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type SquadMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Jersey      string `json:"jersey,omitempty"`
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.CompetitionID == "" {
		return fmt.Errorf("team competition id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
