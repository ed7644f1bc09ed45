package footballdata

// Provider payloads. Every field is optional; absence decodes to the zero
// value and normalization treats it as unknown.

type matchesEnvelope struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	ID          int64           `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Minute      *int            `json:"minute"`
	InjuryTime  *int            `json:"injuryTime"`
	Matchday    *int            `json:"matchday"`
	Stage       string          `json:"stage"`
	Venue       string          `json:"venue"`
	LastUpdated string          `json:"lastUpdated"`
	Competition *apiCompetition `json:"competition"`
	HomeTeam    *apiMatchTeam   `json:"homeTeam"`
	AwayTeam    *apiMatchTeam   `json:"awayTeam"`
	Score       *apiScore       `json:"score"`

	Goals         []apiGoal         `json:"goals"`
	Bookings      []apiBooking      `json:"bookings"`
	Substitutions []apiSubstitution `json:"substitutions"`
}

type apiCompetition struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type apiTeamRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type apiMatchTeam struct {
	apiTeamRef
	Formation  string             `json:"formation"`
	Lineup     []apiLineupPlayer  `json:"lineup"`
	Bench      []apiLineupPlayer  `json:"bench"`
	Statistics *apiTeamStatistics `json:"statistics"`
}

type apiLineupPlayer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	ShirtNumber *int   `json:"shirtNumber"`
}

type apiTeamStatistics struct {
	CornerKicks    *int     `json:"corner_kicks"`
	Offsides       *int     `json:"offsides"`
	Fouls          *int     `json:"fouls"`
	BallPossession *float64 `json:"ball_possession"`
	Saves          *int     `json:"saves"`
	Shots          *int     `json:"shots"`
	ShotsOnGoal    *int     `json:"shots_on_goal"`
	YellowCards    *int     `json:"yellow_cards"`
	YellowRedCards *int     `json:"yellow_red_cards"`
	RedCards       *int     `json:"red_cards"`
}

type apiScore struct {
	Winner   string        `json:"winner"`
	Duration string        `json:"duration"`
	FullTime *apiScorePair `json:"fullTime"`
	HalfTime *apiScorePair `json:"halfTime"`
}

type apiScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type apiPerson struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiGoal struct {
	Minute     *int          `json:"minute"`
	InjuryTime *int          `json:"injuryTime"`
	Type       string        `json:"type"`
	Team       *apiTeamRef   `json:"team"`
	Scorer     *apiPerson    `json:"scorer"`
	Assist     *apiPerson    `json:"assist"`
	Score      *apiScorePair `json:"score"`
}

type apiBooking struct {
	Minute *int        `json:"minute"`
	Team   *apiTeamRef `json:"team"`
	Player *apiPerson  `json:"player"`
	Card   string      `json:"card"`
}

type apiSubstitution struct {
	Minute    *int        `json:"minute"`
	Team      *apiTeamRef `json:"team"`
	PlayerOut *apiPerson  `json:"playerOut"`
	PlayerIn  *apiPerson  `json:"playerIn"`
}

type standingsEnvelope struct {
	Competition *apiCompetition `json:"competition"`
	Standings   []apiStanding   `json:"standings"`
}

type apiStanding struct {
	Stage string          `json:"stage"`
	Type  string          `json:"type"`
	Group string          `json:"group"`
	Table []apiTableEntry `json:"table"`
}

type apiTableEntry struct {
	Position       int         `json:"position"`
	Team           *apiTeamRef `json:"team"`
	PlayedGames    int         `json:"playedGames"`
	Form           string      `json:"form"`
	Won            int         `json:"won"`
	Draw           int         `json:"draw"`
	Lost           int         `json:"lost"`
	Points         int         `json:"points"`
	GoalsFor       int         `json:"goalsFor"`
	GoalsAgainst   int         `json:"goalsAgainst"`
	GoalDifference int         `json:"goalDifference"`
}

type teamsEnvelope struct {
	Teams []apiTeam `json:"teams"`
}

type apiTeam struct {
	apiTeamRef
	Venue string           `json:"venue"`
	Coach *apiPerson       `json:"coach"`
	Squad []apiSquadMember `json:"squad"`
}

type apiSquadMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	Nationality string `json:"nationality"`
	ShirtNumber *int   `json:"shirtNumber"`
}
