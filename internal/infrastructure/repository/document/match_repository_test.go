package document

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
)

func kickoff(day int) time.Time {
	return time.Date(2026, 10, day, 19, 45, 0, 0, time.UTC)
}

func TestMatchRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(memory.NewDocumentStore())
	in := match.Match{
		ID:            "501",
		CompetitionID: "PL",
		HomeTeam:      match.TeamRef{ID: "57", Name: "Arsenal FC"},
		AwayTeam:      match.TeamRef{ID: "61", Name: "Chelsea FC"},
		KickoffAt:     kickoff(18),
		Status:        match.StatusInPlay,
		Score:         match.NewScore(1, 0),
		ExternalRefs:  map[string]string{match.SourceESPN: "740001"},
	}
	if err := repo.UpsertMany(ctx, []match.Match{in}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := repo.GetByID(ctx, "501")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	home, away := got.Score.Values()
	if home != 1 || away != 0 || got.ExternalID(match.SourceESPN) != "740001" {
		t.Fatalf("unexpected match after round trip: %+v", got)
	}

	ids, err := repo.ListCompetitionIDs(ctx)
	if err != nil {
		t.Fatalf("list competitions: %v", err)
	}
	if !slices.Equal(ids, []string{"PL"}) {
		t.Fatalf("unexpected competition ids %v", ids)
	}

	listed, err := repo.ListByCompetition(ctx, "PL", kickoff(18).Truncate(24*time.Hour), kickoff(19))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one match in range, got %d", len(listed))
	}
}

func TestMatchRepositoryPruneMatrix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(memory.NewDocumentStore())
	seed := []match.Match{
		{ID: "past", CompetitionID: "PL", KickoffAt: kickoff(10)},
		{ID: "past-admin", CompetitionID: "PL", KickoffAt: kickoff(10), CreatedByAdmin: true},
		{ID: "window-gone", CompetitionID: "PL", KickoffAt: kickoff(19)},
		{ID: "window-admin", CompetitionID: "PL", KickoffAt: kickoff(19), CreatedByAdmin: true},
		{ID: "window-fetched", CompetitionID: "PL", KickoffAt: kickoff(20)},
		{ID: "other-competition", CompetitionID: "SA", KickoffAt: kickoff(10)},
	}
	if err := repo.UpsertMany(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	start := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	n, err := repo.Prune(ctx, match.PruneFilter{
		CompetitionID: "PL",
		Before:        &start,
		From:          &start,
		To:            &end,
		KeepIDs:       []string{"window-fetched"},
	})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned %d matches, want 2", n)
	}

	want := map[string]bool{
		"past":              false,
		"past-admin":        true,
		"window-gone":       false,
		"window-admin":      true,
		"window-fetched":    true,
		"other-competition": true,
	}
	for id, kept := range want {
		_, ok, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if ok != kept {
			t.Fatalf("match %s kept=%v, want %v", id, ok, kept)
		}
	}
}

func TestMatchRepositoryKeepsAdminFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository(memory.NewDocumentStore())
	if err := repo.UpsertMany(ctx, []match.Match{{ID: "1", CompetitionID: "PL", KickoffAt: kickoff(1), CreatedByAdmin: true}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// A provider payload never carries the admin flag.
	if err := repo.UpsertMany(ctx, []match.Match{{ID: "1", CompetitionID: "PL", KickoffAt: kickoff(1)}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, _, err := repo.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedByAdmin {
		t.Fatalf("admin flag was cleared by an automated write")
	}
}

func TestMatchRepositoryPruneRequiresCompetition(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(memory.NewDocumentStore())
	if _, err := repo.Prune(context.Background(), match.PruneFilter{}); err == nil {
		t.Fatalf("expected error for prune without competition")
	}
}
