package document

import (
	"context"
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
	"github.com/riskibarqy/matchfeed/internal/domain/scorelog"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
)

func TestCommentaryRepositoryReplace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewCommentaryRepository(memory.NewDocumentStore())

	empty, err := repo.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, repo.Replace(ctx, "m1", []commentary.Entry{{MatchID: "m1", Time: "1'", Text: "Kick off"}}))
	require.NoError(t, repo.Replace(ctx, "m1", []commentary.Entry{
		{MatchID: "m1", Time: "1'", Text: "Kick off"},
		{MatchID: "m1", Time: "2'", Text: "Corner"},
	}))

	got, err := repo.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Corner", got[1].Text)
}

func TestLineupRepositoryKeyedByMatchAndTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewLineupRepository(memory.NewDocumentStore())
	require.NoError(t, repo.UpsertMany(ctx, []lineup.Lineup{
		{MatchID: "m1", TeamID: "61", Side: match.SideAway, Formation: "4-3-3"},
		{MatchID: "m1", TeamID: "57", Side: match.SideHome, Formation: "4-4-2"},
		{MatchID: "m2", TeamID: "57", Side: match.SideHome},
	}))
	require.NoError(t, repo.UpsertMany(ctx, []lineup.Lineup{
		{MatchID: "m1", TeamID: "57", Side: match.SideHome, Formation: "4-2-3-1"},
	}))

	got, err := repo.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, match.SideAway, got[0].Side)
	require.Equal(t, "4-2-3-1", got[1].Formation)

	require.Error(t, repo.UpsertMany(ctx, []lineup.Lineup{{MatchID: "m1"}}))
}

func TestStatisticsRepositoryNormalizesOnWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStatisticsRepository(memory.NewDocumentStore())
	require.NoError(t, repo.Upsert(ctx, matchstats.Statistics{
		MatchID:    "m1",
		Possession: matchstats.Pair{Home: 130, Away: 12},
		Shots:      matchstats.Pair{Home: -3, Away: 7},
	}))

	got, ok, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 100, got.Possession.Home+got.Possession.Away)
	require.Equal(t, 0, got.Shots.Home)
	require.Equal(t, 7, got.Shots.Away)
}

func TestScoreLogRepositoryOrdersByRunningTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewScoreLogRepository(memory.NewDocumentStore())
	at := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, []scorelog.Entry{
		{ID: "z", MatchID: "m1", Score: scorelog.Snapshot{Home: 2, Away: 0}, RecordedAt: at},
		{ID: "a", MatchID: "m1", Score: scorelog.Snapshot{Home: 1, Away: 0}, RecordedAt: at},
	}))
	// Re-appending the same ids does not duplicate.
	require.NoError(t, repo.Append(ctx, []scorelog.Entry{
		{ID: "a", MatchID: "m1", Score: scorelog.Snapshot{Home: 1, Away: 0}, RecordedAt: at},
	}))

	got, err := repo.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, scorelog.Snapshot{Home: 1, Away: 0}, got[0].Score)
	require.Equal(t, scorelog.Snapshot{Home: 2, Away: 0}, got[1].Score)
}

func TestStateRepositorySave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStateRepository(memory.NewDocumentStore())
	_, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	last := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, ingeststate.State{Status: ingeststate.StatusIdle, Message: "ok", LastFetch: &last}))

	got, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ingeststate.StatusIdle, got.Status)
	require.True(t, got.LastFetch.Equal(last))
	require.False(t, got.UpdatedAt.IsZero())
}

func TestStandingRepositoryReplace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStandingRepository(memory.NewDocumentStore())
	require.NoError(t, repo.ReplaceByCompetition(ctx, "PL", []leaguestanding.Standing{
		{TeamID: "57", Position: 2},
		{TeamID: "61", Position: 1},
		{TeamID: "65", Position: 3},
	}))
	require.NoError(t, repo.ReplaceByCompetition(ctx, "PL", []leaguestanding.Standing{
		{TeamID: "57", Position: 1},
		{TeamID: "61", Position: 2},
	}))
	require.NoError(t, repo.ReplaceByCompetition(ctx, "PL", nil))

	got, err := repo.ListByCompetition(ctx, "PL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "57", got[0].TeamID)
	require.Equal(t, "PL", got[0].CompetitionID)
}

func TestTeamRepositoryValidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTeamRepository(memory.NewDocumentStore())
	require.Error(t, repo.UpsertMany(ctx, []team.Team{{ID: "57"}}))
	require.NoError(t, repo.UpsertMany(ctx, []team.Team{
		{ID: "61", CompetitionID: "PL", Name: "Chelsea FC"},
		{ID: "57", CompetitionID: "PL", Name: "Arsenal FC"},
	}))

	got, err := repo.ListByCompetition(ctx, "PL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Arsenal FC", got[0].Name)
}

func TestNewsRepositoryNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewNewsRepository(memory.NewDocumentStore())
	older := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	newer := older.Add(6 * time.Hour)
	require.NoError(t, repo.UpsertMany(ctx, []news.Item{
		{ID: "1", CompetitionID: "PL", Kind: news.KindArticle, Headline: "old", PublishedAt: older},
		{ID: "2", CompetitionID: "PL", Kind: news.KindArticle, Headline: "new", PublishedAt: newer},
		{ID: "9", CompetitionID: "PL", MatchID: "m1", Kind: news.KindHighlight, Headline: "clip", PublishedAt: newer},
	}))

	got, err := repo.ListByCompetition(ctx, "PL")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.NotEqual(t, "old", got[0].Headline)
	require.Equal(t, "old", got[2].Headline)

	clips, err := repo.ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, clips, 1)
	require.Equal(t, news.KindHighlight, clips[0].Kind)
}
