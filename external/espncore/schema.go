package espncore

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"
)

// Core documents link to each other with {"$ref": url}; any field typed as
// json.RawMessage may hold either such a link or the inline object.

type coreEvent struct {
	ID           flexString        `json:"id"`
	Date         string            `json:"date"`
	Name         string            `json:"name"`
	Competitions []json.RawMessage `json:"competitions"`
}

type coreCompetition struct {
	ID           flexString        `json:"id"`
	Date         string            `json:"date"`
	Competitors  []json.RawMessage `json:"competitors"`
	Status       json.RawMessage   `json:"status"`
	Details      json.RawMessage   `json:"details"`
	Commentaries json.RawMessage   `json:"commentaries"`
}

type coreCompetitor struct {
	ID         flexString      `json:"id"`
	HomeAway   string          `json:"homeAway"`
	Team       json.RawMessage `json:"team"`
	Score      json.RawMessage `json:"score"`
	Statistics json.RawMessage `json:"statistics"`
}

type coreTeam struct {
	ID               flexString `json:"id"`
	DisplayName      string     `json:"displayName"`
	ShortDisplayName string     `json:"shortDisplayName"`
	Abbreviation     string     `json:"abbreviation"`
	Logos            []struct {
		Href string `json:"href"`
	} `json:"logos"`
}

type coreScore struct {
	Value        *float64 `json:"value"`
	DisplayValue string   `json:"displayValue"`
}

type coreStatus struct {
	DisplayClock string `json:"displayClock"`
	Type         *struct {
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"type"`
}

type corePlay struct {
	ID   flexString `json:"id"`
	Type *struct {
		ID   flexString `json:"id"`
		Text string     `json:"text"`
	} `json:"type"`
	Text      string          `json:"text"`
	ShortText string          `json:"shortText"`
	Clock     *coreClock      `json:"clock"`
	Team      json.RawMessage `json:"team"`
}

type coreClock struct {
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

type coreCommentary struct {
	Sequence int             `json:"sequence"`
	Time     *coreClock      `json:"time"`
	Text     string          `json:"text"`
	Play     json.RawMessage `json:"play"`
}

type coreStatistics struct {
	Splits struct {
		Categories []struct {
			Stats []struct {
				Name  string  `json:"name"`
				Value float64 `json:"value"`
			} `json:"stats"`
		} `json:"categories"`
	} `json:"splits"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*f = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	*f = flexString(strings.TrimSpace(raw))
	return nil
}
