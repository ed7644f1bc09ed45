package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/document"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchfeed/internal/platform/id"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

var (
	ingestNow = time.Date(2026, 10, 18, 15, 52, 0, 0, time.UTC)
	premier   = Competition{Code: "PL", LeagueSlug: "eng.1", Name: "Premier League"}
)

type fakeSchedule struct {
	mu      sync.Mutex
	matches []match.Match
	// failFrom makes the slice starting at this instant fail.
	failFrom time.Time
	calls    int
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeSchedule) Name() string { return "fake-schedule" }

func (f *fakeSchedule) FetchMatches(ctx context.Context, comp Competition, from, to time.Time) ([]match.Match, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	f.started = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !f.failFrom.IsZero() && from.Equal(f.failFrom) {
		return nil, ErrRateLimited
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]match.Match, 0)
	for _, m := range f.matches {
		if m.CompetitionID == comp.Code && !m.KickoffAt.Before(from) && m.KickoffAt.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSchedule) set(matches ...match.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = matches
}

type fakeDetails struct {
	mu      sync.Mutex
	details map[string]MatchDetail
	calls   map[string]int
}

func (f *fakeDetails) Name() string { return "fake-details" }

func (f *fakeDetails) FetchMatchDetail(_ context.Context, _ Competition, m match.Match) (MatchDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[m.ID]++
	return f.details[m.ID], nil
}

type panickingStandings struct{}

func (panickingStandings) FetchStandings(context.Context, Competition) ([]leaguestanding.Standing, error) {
	panic("standings table layout changed")
}

type failingNews struct{}

func (failingNews) FetchNews(context.Context, Competition) ([]news.Item, error) {
	return nil, errors.New("news feed unavailable")
}

type staticRosters struct{ teams []team.Team }

func (s staticRosters) FetchTeams(context.Context, Competition) ([]team.Team, error) {
	return s.teams, nil
}

func newIngestionFixture() (IngestionRepositories, *memory.DocumentStore) {
	store := memory.NewDocumentStore()
	return IngestionRepositories{
		Matches:    document.NewMatchRepository(store),
		Commentary: document.NewCommentaryRepository(store),
		Lineups:    document.NewLineupRepository(store),
		Statistics: document.NewStatisticsRepository(store),
		ScoreLog:   document.NewScoreLogRepository(store),
		State:      document.NewStateRepository(store),
		Standings:  document.NewStandingRepository(store),
		Teams:      document.NewTeamRepository(store),
		News:       document.NewNewsRepository(store),
	}, store
}

func newTestIngestion(repos IngestionRepositories, sources IngestionSources, cfg IngestionConfig) *IngestionService {
	if len(cfg.Competitions) == 0 {
		cfg.Competitions = []Competition{premier}
	}
	service := NewIngestionService(repos, sources, cfg, &id.Sequence{Prefix: "id"}, logging.NewNop())
	service.now = func() time.Time { return ingestNow }
	return service
}

func liveMatch(matchID string, home, away int) match.Match {
	return match.Match{
		ID:            matchID,
		Source:        match.SourceFootballData,
		CompetitionID: premier.Code,
		HomeTeam:      match.TeamRef{ID: "57", Name: "Arsenal"},
		AwayTeam:      match.TeamRef{ID: "61", Name: "Chelsea"},
		KickoffAt:     ingestNow.Add(-52 * time.Minute),
		Status:        match.StatusInPlay,
		Score:         match.NewScore(home, away),
		Clock:         "52'",
	}
}

func TestRunCycleDerivesGoalFromScoreDelta(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	require.NoError(t, repos.Matches.UpsertMany(ctx, []match.Match{liveMatch("m1", 1, 0)}))

	schedule := &fakeSchedule{}
	schedule.set(liveMatch("m1", 2, 0))
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Equal(t, cycleStatusOK, result.Status)
	require.Equal(t, 1, result.Competitions[0].DerivedGoals)

	stored, ok, err := repos.Matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored.Events, 1)
	goal := stored.Events[0]
	require.Equal(t, match.KindGoal, goal.Kind)
	require.Equal(t, match.SideHome, goal.Side)
	require.True(t, goal.Derived)
	require.Equal(t, 52, *goal.Minute)

	audit, err := repos.ScoreLog.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, audit, 1)
	require.True(t, audit[0].Derived)
	require.Equal(t, 2, audit[0].Score.Home)
	require.Equal(t, 0, audit[0].Score.Away)

	// Same score again: nothing new.
	result, err = service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Zero(t, result.Competitions[0].DerivedGoals)

	stored, _, err = repos.Matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, stored.Events, 1)
	audit, err = repos.ScoreLog.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, audit, 1)
}

func TestRunCycleExplicitFeedReplacesDerivedGoals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	schedule := &fakeSchedule{}
	schedule.set(liveMatch("m1", 1, 0))
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{})

	_, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	stored, _, err := repos.Matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, stored.Events, 1)
	require.True(t, stored.Events[0].Derived)

	details := &fakeDetails{details: map[string]MatchDetail{
		"m1": {Events: []match.Event{
			{ID: "play-1", Kind: match.KindGoal, Minute: intPtr(23), Side: match.SideHome, Player: "Saka"},
		}},
	}}
	schedule.set(liveMatch("m1", 2, 0))
	service = newTestIngestion(repos, IngestionSources{Schedule: schedule, Details: []DetailProvider{details}}, IngestionConfig{})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Zero(t, result.Competitions[0].DerivedGoals, "no derivation once a feed exists")
	require.Equal(t, 1, result.Competitions[0].Details)

	stored, _, err = repos.Matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.True(t, stored.ExplicitFeed)
	require.Len(t, stored.Events, 1)
	require.Equal(t, "play-1", stored.Events[0].ID)

	audit, err := repos.ScoreLog.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, audit, 2)
	var explicit int
	for _, entry := range audit {
		if !entry.Derived {
			explicit++
			require.Equal(t, "Saka", entry.Player)
			require.Equal(t, 1, entry.Score.Home)
		}
	}
	require.Equal(t, 1, explicit)
}

func TestRunCyclePrunesOutsideAndMissingMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	yesterday := ingestNow.Add(-24 * time.Hour)
	tomorrow := ingestNow.Add(24 * time.Hour)
	seed := func(matchID, competition string, kickoff time.Time, admin bool) match.Match {
		return match.Match{
			ID:             matchID,
			CompetitionID:  competition,
			KickoffAt:      kickoff,
			Status:         match.StatusTimed,
			CreatedByAdmin: admin,
		}
	}
	require.NoError(t, repos.Matches.UpsertMany(ctx, []match.Match{
		seed("old", "PL", yesterday, false),
		seed("old-admin", "PL", yesterday, true),
		seed("gone", "PL", tomorrow, false),
		seed("gone-admin", "PL", tomorrow, true),
		seed("kept", "PL", tomorrow, false),
		seed("other-league", "SA", yesterday, false),
	}))

	schedule := &fakeSchedule{}
	schedule.set(seed("kept", "PL", tomorrow, false), seed("new", "PL", tomorrow.Add(48*time.Hour), false))
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Competitions[0].Pruned)
	require.Equal(t, 3, schedule.calls, "seven days in three-day slices")

	cases := map[string]bool{
		"old":          false,
		"old-admin":    true,
		"gone":         false,
		"gone-admin":   true,
		"kept":         true,
		"new":          true,
		"other-league": true,
	}
	for matchID, want := range cases {
		_, ok, err := repos.Matches.GetByID(ctx, matchID)
		require.NoError(t, err)
		require.Equalf(t, want, ok, "match %s", matchID)
	}
}

func TestRunCycleSkipsInWindowPruneWhenASliceFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	tomorrow := ingestNow.Add(24 * time.Hour)
	require.NoError(t, repos.Matches.UpsertMany(ctx, []match.Match{
		{ID: "gone", CompetitionID: "PL", KickoffAt: tomorrow, Status: match.StatusTimed},
		{ID: "old", CompetitionID: "PL", KickoffAt: ingestNow.Add(-48 * time.Hour), Status: match.StatusFinished},
	}))

	schedule := &fakeSchedule{failFrom: startOfDay(ingestNow).AddDate(0, 0, 3)}
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Equal(t, cycleStatusError, result.Status)
	require.NotEmpty(t, result.Competitions[0].Error)
	require.Equal(t, 3, schedule.calls, "remaining slices are still fetched")

	_, ok, err := repos.Matches.GetByID(ctx, "gone")
	require.NoError(t, err)
	require.True(t, ok, "in-window prune needs a complete fetch")
	_, ok, err = repos.Matches.GetByID(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok, "stale matches are pruned regardless")

	state, err := service.DisplayState(ctx)
	require.NoError(t, err)
	require.Equal(t, ingeststate.StatusError, state.Status)
}

func TestRunCycleRejectsOverlappingCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	schedule := &fakeSchedule{started: make(chan struct{}), release: make(chan struct{})}
	started := schedule.started
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{})

	done := make(chan error, 1)
	go func() {
		_, err := service.RunCycle(ctx, CycleInput{})
		done <- err
	}()
	<-started

	require.True(t, service.State().Running)
	state, err := service.DisplayState(ctx)
	require.NoError(t, err)
	require.Equal(t, ingeststate.StatusFetching, state.Status)

	_, err = service.RunCycle(ctx, CycleInput{})
	require.ErrorIs(t, err, ErrCycleInProgress)

	close(schedule.release)
	require.NoError(t, <-done)
	require.False(t, service.State().Running)
	require.NotNil(t, service.State().LastFetch)

	state, err = service.DisplayState(ctx)
	require.NoError(t, err)
	require.Equal(t, ingeststate.StatusIdle, state.Status)
	require.NotNil(t, state.LastFetch)
}

func TestRunCycleIsolatesSecondaryFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	schedule := &fakeSchedule{}
	schedule.set(liveMatch("m1", 0, 0))
	service := newTestIngestion(repos, IngestionSources{
		Schedule:  schedule,
		Standings: panickingStandings{},
		News:      failingNews{},
		Rosters:   staticRosters{teams: []team.Team{{ID: "57", CompetitionID: "PL", Name: "Arsenal"}}},
	}, IngestionConfig{SecondaryEnabled: true})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Equal(t, cycleStatusOK, result.Status)
	require.Equal(t, 1, result.Competitions[0].Matches)

	teams, err := repos.Teams.ListByCompetition(ctx, "PL")
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestRunCycleStoresDetailsOnceAfterFullTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	finished := liveMatch("m1", 2, 1)
	finished.Status = match.StatusFinished
	finished.Clock = ""
	finished.KickoffAt = ingestNow.Add(-2 * time.Hour)

	schedule := &fakeSchedule{}
	schedule.set(finished)
	starters := []lineup.Player{{Name: "Raya", Position: "G"}}
	details := &fakeDetails{details: map[string]MatchDetail{
		"m1": {
			Commentary: []commentary.RawEntry{
				{Time: "90'+3", Text: "Match ends, Arsenal 2, Chelsea 1."},
				{Time: "1'", Text: "First Half begins."},
				{Clock: "45'", Text: "<b>First Half ends</b>, Arsenal 1, Chelsea 0."},
			},
			Lineups: []lineup.Lineup{
				{TeamID: "57", Side: match.SideHome, Starters: starters},
				{TeamID: "61", Side: match.SideAway, Starters: starters},
			},
			Statistics: &matchstats.Statistics{Possession: matchstats.Pair{Home: 58, Away: 43}},
			Highlights: []news.Item{{ID: "v1", CompetitionID: "PL", MatchID: "m1", Kind: news.KindHighlight, Headline: "Highlights"}},
		},
	}}
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule, Details: []DetailProvider{details}}, IngestionConfig{})

	_, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	_, err = service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Equal(t, 1, details.calls["m1"], "details of a final match are fetched once")

	stored, _, err := repos.Matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.True(t, stored.DetailsFinal)

	lines, err := repos.Commentary.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	require.Equal(t, "First Half begins.", lines[0].Text)
	require.Equal(t, "First Half ends, Arsenal 1, Chelsea 0.", lines[1].Text)
	require.Equal(t, "m1", lines[2].MatchID)

	sheets, err := repos.Lineups.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	stats, ok, err := repos.Statistics.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 100, stats.Possession.Home+stats.Possession.Away)

	clips, err := repos.News.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, clips, 1)

	_, err = service.RunCycle(ctx, CycleInput{Force: true})
	require.NoError(t, err)
	require.Equal(t, 2, details.calls["m1"], "force refetches final details")
}

func TestRunCycleStopsWhenFetchingDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	schedule := &fakeSchedule{}
	service := newTestIngestion(repos, IngestionSources{
		Schedule: schedule,
		Disabled: func() bool { return true },
	}, IngestionConfig{})

	_, err := service.RunCycle(ctx, CycleInput{})
	require.ErrorIs(t, err, ErrUpstreamRejected)
	require.Zero(t, schedule.calls)
	require.True(t, service.State().APIDisabled)

	state, err := service.DisplayState(ctx)
	require.NoError(t, err)
	require.Equal(t, ingeststate.StatusDisabled, state.Status)
}

func TestRunCycleRejectsUnknownCompetition(t *testing.T) {
	t.Parallel()

	repos, _ := newIngestionFixture()
	service := newTestIngestion(repos, IngestionSources{Schedule: &fakeSchedule{}}, IngestionConfig{})

	_, err := service.RunCycle(context.Background(), CycleInput{Competitions: []string{"xx"}})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.False(t, service.State().Running)
}

func TestRunCycleRunsCompetitionsOnWorkerPool(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos, _ := newIngestionFixture()
	serie := Competition{Code: "SA", LeagueSlug: "ita.1"}
	other := liveMatch("m2", 0, 1)
	other.CompetitionID = serie.Code

	schedule := &fakeSchedule{}
	schedule.set(liveMatch("m1", 1, 0), other)
	service := newTestIngestion(repos, IngestionSources{Schedule: schedule}, IngestionConfig{
		Competitions: []Competition{premier, serie},
		Workers:      2,
	})

	result, err := service.RunCycle(ctx, CycleInput{})
	require.NoError(t, err)
	require.Len(t, result.Competitions, 2)
	require.Equal(t, "PL", result.Competitions[0].Competition)
	require.Equal(t, "SA", result.Competitions[1].Competition)

	ids, err := repos.Matches.ListCompetitionIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"PL", "SA"}, ids)
}
