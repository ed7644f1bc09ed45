package footballdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	urls      []string
	headers   []http.Header
}

func (f *fakeFetcher) GetJSON(_ context.Context, rawURL string, header http.Header, target any) error {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	f.headers = append(f.headers, header.Clone())
	f.mu.Unlock()

	for prefix, body := range f.responses {
		if strings.HasPrefix(rawURL, prefix) {
			return sonic.Unmarshal([]byte(body), target)
		}
	}
	return fmt.Errorf("unexpected url %s", rawURL)
}

const matchesFixture = `{
  "matches": [
    {
      "id": 537785,
      "utcDate": "2026-10-18T14:00:00Z",
      "status": "IN_PLAY",
      "minute": 67,
      "competition": {"id": 2021, "code": "PL", "name": "Premier League"},
      "homeTeam": {"id": 57, "name": "Arsenal FC", "shortName": "Arsenal", "crest": "https://crests.example/57.png"},
      "awayTeam": {"id": 61, "name": "Chelsea FC", "shortName": "Chelsea"},
      "score": {"fullTime": {"home": 1, "away": 0}}
    },
    {
      "id": 537786,
      "utcDate": "2026-10-19T16:30:00Z",
      "status": "TIMED",
      "homeTeam": {"id": 65, "name": "Manchester City FC"},
      "awayTeam": {"id": 66, "name": "Manchester United FC"},
      "score": {"fullTime": {"home": null, "away": null}}
    },
    {"utcDate": "2026-10-19T16:30:00Z"}
  ]
}`

const detailFixture = `{
  "id": 537785,
  "utcDate": "2026-10-18T14:00:00Z",
  "status": "FINISHED",
  "homeTeam": {
    "id": 57, "name": "Arsenal FC", "formation": "4-3-3",
    "lineup": [{"id": 1, "name": "David Raya", "position": "Goalkeeper", "shirtNumber": 22}],
    "bench": [{"id": 2, "name": "Kepa", "position": "Goalkeeper", "shirtNumber": 13}],
    "statistics": {"ball_possession": 58, "shots": 14, "shots_on_goal": 6, "corner_kicks": 7, "yellow_cards": 1}
  },
  "awayTeam": {
    "id": 61, "name": "Chelsea FC",
    "statistics": {"ball_possession": 42, "shots": 8, "yellow_red_cards": 1, "red_cards": 0}
  },
  "score": {"fullTime": {"home": 2, "away": 1}},
  "goals": [
    {"minute": 23, "type": "REGULAR", "team": {"id": 57, "name": "Arsenal FC"}, "scorer": {"name": "Bukayo Saka"}, "assist": {"name": "Martin Ødegaard"}},
    {"minute": 45, "injuryTime": 2, "type": "OWN", "team": {"id": 61, "name": "Chelsea FC"}, "scorer": {"name": "William Saliba"}},
    {"minute": 88, "type": "PENALTY", "team": {"id": 57, "name": "Arsenal FC"}, "scorer": {"name": "Bukayo Saka"}}
  ],
  "bookings": [
    {"minute": 30, "team": {"id": 61, "name": "Chelsea FC"}, "player": {"name": "Enzo Fernández"}, "card": "YELLOW_RED"},
    {"minute": 31, "team": {"id": 61}, "player": {"name": "X"}, "card": "PURPLE"}
  ],
  "substitutions": [
    {"minute": 70, "team": {"id": 57, "name": "Arsenal FC"}, "playerOut": {"name": "Bukayo Saka"}, "playerIn": {"name": "Leandro Trossard"}}
  ]
}`

func newTestClient(fetcher Fetcher, details bool) *Client {
	c := NewClient(fetcher, Config{BaseURL: "https://fd.example/v4/", Token: "tok", DetailsEnabled: details, Logger: logging.NewNop()})
	c.now = func() time.Time { return time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC) }
	return c
}

func TestFetchMatches(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]string{"https://fd.example/v4/competitions/PL/matches": matchesFixture}}
	client := newTestClient(fetcher, false)

	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	matches, err := client.FetchMatches(context.Background(), usecase.Competition{Code: "PL"}, from, from.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("fetch matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (row without id dropped), got %d", len(matches))
	}

	if !strings.Contains(fetcher.urls[0], "dateFrom=2026-10-18") || !strings.Contains(fetcher.urls[0], "dateTo=2026-10-20") {
		t.Fatalf("unexpected request url %s", fetcher.urls[0])
	}
	if fetcher.headers[0].Get("X-Auth-Token") != "tok" {
		t.Fatalf("missing auth header")
	}

	live := matches[0]
	if live.ID != "537785" || live.Status != match.StatusInPlay || live.CompetitionName != "Premier League" {
		t.Fatalf("unexpected live match %+v", live)
	}
	if home, away := live.Score.Values(); home != 1 || away != 0 {
		t.Fatalf("unexpected score %d-%d", home, away)
	}
	if live.Clock != "67'" || live.HomeTeam.ID != "57" || live.ExternalID(match.SourceFootballData) != "537785" {
		t.Fatalf("unexpected live match fields %+v", live)
	}
	if matches[1].Score.Known() {
		t.Fatalf("null score must stay unknown")
	}
}

func TestFetchMatchDetail(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]string{"https://fd.example/v4/matches/537785": detailFixture}}
	client := newTestClient(fetcher, true)

	detail, err := client.FetchMatchDetail(context.Background(), usecase.Competition{Code: "PL"}, match.Match{ID: "537785", Source: match.SourceFootballData})
	if err != nil {
		t.Fatalf("fetch detail: %v", err)
	}
	if detail.Match == nil || detail.Match.Status != match.StatusFinished {
		t.Fatalf("expected refreshed finished match, got %+v", detail.Match)
	}

	kinds := make([]match.EventKind, 0, len(detail.Events))
	for _, e := range detail.Events {
		kinds = append(kinds, e.Kind)
	}
	want := []match.EventKind{match.KindGoal, match.KindOwnGoal, match.KindPenalty, match.KindSecondYellow, match.KindSubstitution}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("unexpected kinds: got %v want %v", kinds, want)
	}

	first := detail.Events[0]
	if first.Side != match.SideHome || first.Player != "Bukayo Saka" || first.Assist != "Martin Ødegaard" || first.Clock != "23'" {
		t.Fatalf("unexpected first goal %+v", first)
	}
	own := detail.Events[1]
	if own.Side != match.SideAway || own.Clock != "45'+2'" || own.ExtraMinute == nil || *own.ExtraMinute != 2 {
		t.Fatalf("unexpected own goal %+v", own)
	}

	if len(detail.Lineups) != 1 || detail.Lineups[0].Formation != "4-3-3" || detail.Lineups[0].Starters[0].Jersey != "22" {
		t.Fatalf("unexpected lineups %+v", detail.Lineups)
	}
	stats := detail.Statistics
	if stats == nil || stats.Possession.Home != 58 || stats.Possession.Away != 42 || stats.RedCards.Away != 1 {
		t.Fatalf("unexpected statistics %+v", stats)
	}
}

func TestFetchMatchDetailDisabled(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	client := newTestClient(fetcher, false)
	detail, err := client.FetchMatchDetail(context.Background(), usecase.Competition{Code: "PL"}, match.Match{ID: "1", Source: match.SourceFootballData})
	if err != nil || !detail.Empty() {
		t.Fatalf("expected empty detail without error, got %+v %v", detail, err)
	}
	if len(fetcher.urls) != 0 {
		t.Fatalf("disabled detail must not call upstream")
	}
}

func TestFetchStandingsKeepsTotalTable(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]string{"https://fd.example/v4/competitions/PL/standings": `{
	  "standings": [
	    {"type": "TOTAL", "table": [
	      {"position": 1, "team": {"id": 57, "name": "Arsenal FC"}, "playedGames": 8, "won": 6, "draw": 1, "lost": 1, "points": 19, "goalsFor": 15, "goalsAgainst": 5, "goalDifference": 10, "form": "W,W,D"},
	      {"position": 2, "team": {"id": 61, "name": "Chelsea FC"}, "playedGames": 8, "points": 17}
	    ]},
	    {"type": "HOME", "table": [{"position": 1, "team": {"id": 61}}]}
	  ]
	}`}}
	client := newTestClient(fetcher, false)

	rows, err := client.FetchStandings(context.Background(), usecase.Competition{Code: "PL"})
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(rows) != 2 || rows[0].Points != 19 || rows[0].CompetitionID != "PL" || rows[0].Form != "W,W,D" {
		t.Fatalf("unexpected standings %+v", rows)
	}
}

func TestFetchTeams(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{responses: map[string]string{"https://fd.example/v4/competitions/PL/teams": `{
	  "teams": [
	    {"id": 57, "name": "Arsenal FC", "tla": "ARS", "coach": {"name": "Mikel Arteta"},
	     "squad": [{"id": 7, "name": "Bukayo Saka", "position": "Right Winger", "nationality": "England"}]},
	    {"id": 0, "name": "Ghost"}
	  ]
	}`}}
	client := newTestClient(fetcher, false)

	teams, err := client.FetchTeams(context.Background(), usecase.Competition{Code: "PL"})
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if len(teams) != 1 || teams[0].Coach != "Mikel Arteta" || len(teams[0].Squad) != 1 {
		t.Fatalf("unexpected teams %+v", teams)
	}
	if err := teams[0].Validate(); err != nil {
		t.Fatalf("normalized team must validate: %v", err)
	}
}

func TestFetchMatchesRejectsEmptyRange(t *testing.T) {
	t.Parallel()

	client := newTestClient(&fakeFetcher{}, false)
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchMatches(context.Background(), usecase.Competition{Code: "PL"}, day, day); err == nil {
		t.Fatalf("expected error for empty range")
	}
}
