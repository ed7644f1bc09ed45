package espn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(strings.TrimSpace(string(data)))
	return nil
}

// flexScore accepts "2", 2 or {"value": 2, "displayValue": "2"}.
type flexScore struct {
	Value *int
}

func (f *flexScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	f.Value = nil
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := sonic.Unmarshal(data, &obj); err != nil {
			return nil
		}
		if obj.Value != nil {
			v := int(*obj.Value)
			f.Value = &v
			return nil
		}
		f.Value = atoiPtr(obj.DisplayValue)
	case '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return nil
		}
		f.Value = atoiPtr(s)
	default:
		f.Value = atoiPtr(string(data))
	}
	return nil
}

// flexBool accepts true/false or {"didSub": true}.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "true":
		*f = true
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			DidSub bool `json:"didSub"`
		}
		_ = sonic.Unmarshal(data, &obj)
		*f = flexBool(obj.DidSub)
	default:
		*f = false
	}
	return nil
}

func atoiPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int(f)
		return &v
	}
	return nil
}

type scoreboardEnvelope struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	ID           flexString       `json:"id"`
	Date         string           `json:"date"`
	Name         string           `json:"name"`
	ShortName    string           `json:"shortName"`
	Status       *apiStatus       `json:"status"`
	Competitions []apiCompetition `json:"competitions"`
}

type apiStatus struct {
	Clock        float64        `json:"clock"`
	DisplayClock string         `json:"displayClock"`
	Period       int            `json:"period"`
	Type         *apiStatusType `json:"type"`
}

type apiStatusType struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

type apiCompetition struct {
	ID          flexString      `json:"id"`
	Date        string          `json:"date"`
	Venue       *apiVenue       `json:"venue"`
	Status      *apiStatus      `json:"status"`
	Competitors []apiCompetitor `json:"competitors"`
	// Some feeds embed the two sides directly.
	HomeTeam *apiTeam `json:"homeTeam"`
	AwayTeam *apiTeam `json:"awayTeam"`
}

type apiVenue struct {
	FullName string `json:"fullName"`
}

type apiCompetitor struct {
	ID       flexString `json:"id"`
	HomeAway string     `json:"homeAway"`
	Score    flexScore  `json:"score"`
	Team     *apiTeam   `json:"team"`
}

type apiTeam struct {
	ID               flexString `json:"id"`
	DisplayName      string     `json:"displayName"`
	ShortDisplayName string     `json:"shortDisplayName"`
	Name             string     `json:"name"`
	Abbreviation     string     `json:"abbreviation"`
	Logo             string     `json:"logo"`
	Logos            []apiLink  `json:"logos"`
}

type apiLink struct {
	Href string `json:"href"`
	URL  string `json:"url"`
}

type summaryEnvelope struct {
	Header     *apiHeader      `json:"header"`
	KeyEvents  []apiPlay       `json:"keyEvents"`
	Commentary []apiCommentary `json:"commentary"`
	Rosters    []apiRoster     `json:"rosters"`
	Boxscore   *apiBoxscore    `json:"boxscore"`
	Videos     []apiVideo      `json:"videos"`
}

type apiHeader struct {
	ID           flexString       `json:"id"`
	Competitions []apiCompetition `json:"competitions"`
}

type apiPlay struct {
	ID           flexString       `json:"id"`
	Type         *apiPlayType     `json:"type"`
	Text         string           `json:"text"`
	ShortText    string           `json:"shortText"`
	Clock        *apiClock        `json:"clock"`
	Team         *apiTeam         `json:"team"`
	Participants []apiParticipant `json:"participants"`
	ScoringPlay  bool             `json:"scoringPlay"`
}

type apiPlayType struct {
	ID   flexString `json:"id"`
	Text string     `json:"text"`
	Type string     `json:"type"`
}

type apiClock struct {
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

type apiParticipant struct {
	Athlete *apiAthlete `json:"athlete"`
}

type apiAthlete struct {
	ID          flexString `json:"id"`
	DisplayName string     `json:"displayName"`
}

type apiCommentary struct {
	Sequence int       `json:"sequence"`
	Time     *apiClock `json:"time"`
	Text     string    `json:"text"`
	Play     *apiPlay  `json:"play"`
}

type apiRoster struct {
	HomeAway  string           `json:"homeAway"`
	Team      *apiTeam         `json:"team"`
	Formation string           `json:"formation"`
	Roster    []apiRosterEntry `json:"roster"`
}

type apiRosterEntry struct {
	Starter   bool         `json:"starter"`
	Jersey    flexString   `json:"jersey"`
	SubbedIn  flexBool     `json:"subbedIn"`
	SubbedOut flexBool     `json:"subbedOut"`
	Athlete   *apiAthlete  `json:"athlete"`
	Position  *apiPosition `json:"position"`
}

type apiPosition struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
}

type apiBoxscore struct {
	Teams []apiBoxscoreTeam `json:"teams"`
}

type apiBoxscoreTeam struct {
	HomeAway   string        `json:"homeAway"`
	Team       *apiTeam      `json:"team"`
	Statistics []apiStatItem `json:"statistics"`
}

type apiStatItem struct {
	Name         string     `json:"name"`
	DisplayValue flexString `json:"displayValue"`
}

type apiVideo struct {
	ID                  flexString `json:"id"`
	Headline            string     `json:"headline"`
	Description         string     `json:"description"`
	Thumbnail           string     `json:"thumbnail"`
	OriginalPublishDate string     `json:"originalPublishDate"`
	LastModified        string     `json:"lastModified"`
	Links               *apiLinks  `json:"links"`
}

type apiLinks struct {
	Web    *apiLink `json:"web"`
	Source *apiLink `json:"source"`
}

type newsEnvelope struct {
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	ID                   flexString `json:"id"`
	DataSourceIdentifier string     `json:"dataSourceIdentifier"`
	Headline             string     `json:"headline"`
	Description          string     `json:"description"`
	Published            string     `json:"published"`
	Links                *apiLinks  `json:"links"`
	Images               []apiLink  `json:"images"`
}
