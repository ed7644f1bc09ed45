package espncore

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type fakeGraph struct {
	mu    sync.Mutex
	docs  map[string]string
	fails map[string]error
	calls map[string]int
}

func (g *fakeGraph) Get(_ context.Context, rawURL string, _ http.Header) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	g.calls[rawURL]++
	if err, ok := g.fails[rawURL]; ok {
		return nil, err
	}
	doc, ok := g.docs[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: 404 %s", usecase.ErrDependencyUnavailable, rawURL)
	}
	return []byte(doc), nil
}

func (g *fakeGraph) count(rawURL string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[rawURL]
}

const (
	root  = "http://core.test/leagues"
	event = root + "/eng.1/events/401"
	comp  = event + "/competitions/401"
	teams = root + "/eng.1/teams"
)

func graphFixture() map[string]string {
	return map[string]string{
		event: `{"id": "401", "date": "2026-10-18T14:00Z", "competitions": [{"$ref": "` + comp + `"}]}`,
		comp: `{
		  "id": "401",
		  "status": {"$ref": "` + comp + `/status"},
		  "details": {"$ref": "` + comp + `/details"},
		  "commentaries": {"count": 2, "pageIndex": 1, "pageCount": 1, "items": [
		    {"sequence": 1, "time": {"displayValue": "1'"}, "text": "First Half begins."},
		    {"sequence": 2, "time": {"displayValue": "23'"}, "text": "Goal! Arsenal 1, Chelsea 0.", "play": {"$ref": "` + comp + `/plays/p1"}}
		  ]},
		  "competitors": [
		    {"id": "359", "homeAway": "home", "team": {"$ref": "` + teams + `/359"}, "score": {"$ref": "` + comp + `/competitors/359/score"}, "statistics": {"$ref": "` + comp + `/competitors/359/statistics"}},
		    {"id": "363", "homeAway": "away", "team": {"$ref": "` + teams + `/363"}, "score": {"$ref": "` + comp + `/competitors/363/score"}}
		  ]
		}`,
		comp + "/status":                     `{"displayClock": "67'", "type": {"name": "STATUS_SECOND_HALF", "state": "in"}}`,
		teams + "/359":                       `{"id": "359", "displayName": "Arsenal", "abbreviation": "ARS", "logos": [{"href": "https://logos.example/359.png"}]}`,
		teams + "/363":                       `{"id": "363", "displayName": "Chelsea"}`,
		comp + "/competitors/359/score":      `{"value": 1.0, "displayValue": "1"}`,
		comp + "/competitors/363/score":      `{"value": 0.0, "displayValue": "0"}`,
		comp + "/competitors/359/statistics": `{"splits": {"categories": [{"stats": [{"name": "possessionPct", "value": 61.4}, {"name": "totalShots", "value": 9}, {"name": "appearances", "value": 11}]}]}}`,
		comp + "/details": `{"count": 3, "pageIndex": 1, "pageCount": 2, "items": [
		  {"$ref": "` + comp + `/plays/p1"},
		  {"id": "p2", "type": {"text": "Yellow Card"}, "text": "Enzo Fernández (Chelsea) is shown the yellow card.", "clock": {"displayValue": "41'"}, "team": {"$ref": "` + teams + `/363"}}
		]}`,
		comp + "/details?page=2": `{"count": 3, "pageIndex": 2, "pageCount": 2, "items": [
		  {"id": "p3", "type": {"text": "Own Goal"}, "text": "Own Goal by Wesley Fofana, Chelsea.", "clock": {"displayValue": "45'+2'"}}
		]}`,
		comp + "/plays/p1": `{"id": "p1", "type": {"text": "Goal"}, "text": "Goal! Arsenal 1, Chelsea 0. Bukayo Saka (Arsenal) right footed shot.", "clock": {"displayValue": "23'"}, "team": {"$ref": "` + teams + `/359"}}`,
	}
}

var premierLeague = usecase.Competition{Code: "PL", LeagueSlug: "eng.1"}

func linkedMatch() match.Match {
	return match.Match{
		ID:           "537785",
		Source:       match.SourceFootballData,
		HomeTeam:     match.TeamRef{Name: "Arsenal FC"},
		AwayTeam:     match.TeamRef{Name: "Chelsea FC"},
		ExternalRefs: map[string]string{match.SourceESPN: "401"},
	}
}

func newTestClient(graph *fakeGraph) *Client {
	c := NewClient(graph, Config{BaseURL: root, Logger: logging.NewNop()})
	c.now = func() time.Time { return time.Date(2026, 10, 18, 15, 7, 0, 0, time.UTC) }
	return c
}

func TestFetchMatchDetailWalksLinks(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{docs: graphFixture()}
	client := newTestClient(graph)

	detail, err := client.FetchMatchDetail(context.Background(), premierLeague, linkedMatch())
	require.NoError(t, err)
	require.Equal(t, match.SourceESPNCore, detail.Source)

	m := detail.Match
	require.NotNil(t, m)
	require.Equal(t, "537785", m.ID)
	require.Equal(t, match.StatusInPlay, m.Status)
	require.Equal(t, "67'", m.Clock)
	require.Equal(t, "Arsenal", m.HomeTeam.Name)
	require.Equal(t, "https://logos.example/359.png", m.HomeTeam.Crest)
	require.Equal(t, "363", m.AwayTeam.ID)
	require.Equal(t, time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC), m.KickoffAt)
	home, away := m.Score.Values()
	require.Equal(t, []int{1, 0}, []int{home, away})

	require.Len(t, detail.Events, 3)
	require.Equal(t, "p1", detail.Events[0].ID)
	require.Equal(t, match.KindGoal, detail.Events[0].Kind)
	require.Equal(t, match.SideHome, detail.Events[0].Side)
	require.Equal(t, match.KindYellowCard, detail.Events[1].Kind)
	require.Equal(t, match.SideAway, detail.Events[1].Side)
	require.Equal(t, match.KindOwnGoal, detail.Events[2].Kind)
	require.Equal(t, match.SideHome, detail.Events[2].Side)
	require.Equal(t, "45'+2'", detail.Events[2].Clock)

	require.Len(t, detail.Commentary, 2)
	require.Equal(t, "23'", detail.Commentary[1].TimeText())
	require.Empty(t, detail.Commentary[0].ID)
	require.Equal(t, "p1", detail.Commentary[1].ID, "linked play id keys the line")

	stats := detail.Statistics
	require.NotNil(t, stats)
	require.Equal(t, 61, stats.Possession.Home)
	require.Equal(t, 39, stats.Possession.Away)
	require.Equal(t, 9, stats.Shots.Home)
}

func TestFetchMatchDetailCachesTeams(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{docs: graphFixture()}
	client := newTestClient(graph)

	for range 2 {
		_, err := client.FetchMatchDetail(context.Background(), premierLeague, linkedMatch())
		require.NoError(t, err)
	}
	require.Equal(t, 1, graph.count(teams+"/359"))
	require.Equal(t, 2, graph.count(comp+"/status"), "live documents are not cached")
}

func TestFetchMatchDetailWithoutEventID(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{}
	client := newTestClient(graph)

	m := linkedMatch()
	m.ExternalRefs = nil
	detail, err := client.FetchMatchDetail(context.Background(), premierLeague, m)
	require.NoError(t, err)
	require.True(t, detail.Empty())
	require.Empty(t, graph.calls)
}

func TestFetchMatchDetailDegradesOnBrokenLink(t *testing.T) {
	t.Parallel()

	docs := graphFixture()
	delete(docs, comp+"/details")
	graph := &fakeGraph{docs: docs}
	client := newTestClient(graph)

	detail, err := client.FetchMatchDetail(context.Background(), premierLeague, linkedMatch())
	require.NoError(t, err)
	require.NotNil(t, detail.Match)
	require.Empty(t, detail.Events)
	require.Len(t, detail.Commentary, 2)
}

func TestFetchMatchDetailPropagatesFatalErrors(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{
		docs:  graphFixture(),
		fails: map[string]error{comp + "/status": fmt.Errorf("%w: latched", usecase.ErrUpstreamRejected)},
	}
	client := newTestClient(graph)

	_, err := client.FetchMatchDetail(context.Background(), premierLeague, linkedMatch())
	require.ErrorIs(t, err, usecase.ErrUpstreamRejected)
}

func TestFetchMatchDetailWithoutStatusKeepsStoredStatus(t *testing.T) {
	t.Parallel()

	docs := graphFixture()
	delete(docs, comp+"/status")
	graph := &fakeGraph{docs: docs}
	client := newTestClient(graph)

	detail, err := client.FetchMatchDetail(context.Background(), premierLeague, linkedMatch())
	require.NoError(t, err)
	require.NotNil(t, detail.Match)
	require.Empty(t, detail.Match.Status, "an unreachable status is not reported")
	require.Empty(t, detail.Match.Clock)
	require.False(t, detail.Match.Score.Known())

	now := time.Date(2026, 10, 18, 15, 8, 0, 0, time.UTC)
	stored := linkedMatch()
	stored.Status = match.StatusInPlay
	stored.Clock = "66'"
	stored.Score = match.NewScore(1, 0)

	merged := usecase.MergeMatch(&stored, *detail.Match, now)
	require.Equal(t, match.StatusInPlay, merged.Status)
	require.Equal(t, "66'", merged.Clock)
	home, away := merged.Score.Values()
	require.Equal(t, []int{1, 0}, []int{home, away})
}
