package usecase

import (
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/scorelog"
	"github.com/riskibarqy/matchfeed/internal/domain/timeline"
)

type derivedGoal struct {
	event match.Event
	score scorelog.Snapshot
}

// deriveGoals returns one synthetic goal per unit of positive score delta
// between before and m.Score, home goals first. Event ids carry the running
// score, so replaying a transition yields the same events.
func deriveGoals(m match.Match, before match.Score, now time.Time) []derivedGoal {
	if !m.Score.Known() {
		return nil
	}
	h0, a0 := before.Values()
	h1, a1 := m.Score.Values()

	var minute, extra *int
	if c, ok := timeline.ParseClock(m.Clock); ok {
		base := c.Base
		minute = &base
		if c.Stoppage > 0 {
			stoppage := c.Stoppage
			extra = &stoppage
		}
	}

	out := make([]derivedGoal, 0, max(h1-h0, 0)+max(a1-a0, 0))
	add := func(side match.Side, home, away int) {
		t := m.HomeTeam
		if side == match.SideAway {
			t = m.AwayTeam
		}
		out = append(out, derivedGoal{
			event: match.Event{
				ID:          fmt.Sprintf("derived:%s:%s:%d-%d", m.ID, side, home, away),
				MatchID:     m.ID,
				Kind:        match.KindGoal,
				Minute:      minute,
				ExtraMinute: extra,
				Clock:       m.Clock,
				Side:        side,
				TeamID:      t.ID,
				Description: fmt.Sprintf("Goal! %s %d, %s %d.", m.HomeTeam.Name, home, m.AwayTeam.Name, away),
				Source:      match.SourceDerived,
				Derived:     true,
				CreatedAt:   now,
			},
			score: scorelog.Snapshot{Home: home, Away: away},
		})
	}
	for h := h0 + 1; h <= h1; h++ {
		add(match.SideHome, h, a0)
	}
	for a := a0 + 1; a <= a1; a++ {
		add(match.SideAway, h1, a)
	}
	return out
}

// reconcileGoals keeps m's scoring events consistent with its score and
// returns the audit entries for goals first seen in this cycle.
//
// Without an explicit feed, score increases become derived goals. Once a
// provider delivered real events, derived goals are dropped and never
// derived again for that match.
func reconcileGoals(prev *match.Match, m *match.Match, now time.Time) ([]scorelog.Entry, int) {
	entries := make([]scorelog.Entry, 0)
	derived := 0

	if m.ExplicitFeed {
		m.Events = slices.DeleteFunc(m.Events, func(e match.Event) bool { return e.Derived })
	} else if prev != nil || match.IsLive(m.Status) {
		var before match.Score
		if prev != nil {
			before = prev.Score
		}
		seen := eventKeys(m.Events)
		goals := deriveGoals(*m, before, now)
		fresh := make([]match.Event, 0, len(goals))
		for _, g := range goals {
			key := g.event.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			fresh = append(fresh, g.event)
			entries = append(entries, auditEntry(*m, g.event, g.score, now))
		}
		derived = len(fresh)
		m.Events = MergeEvents(m.Events, fresh)
	}

	var known map[string]struct{}
	if prev != nil {
		known = eventKeys(prev.Events)
	}
	var home, away int
	for _, e := range m.Events {
		if e.Derived || !e.Kind.IsScoring() {
			continue
		}
		switch e.Side {
		case match.SideHome:
			home++
		case match.SideAway:
			away++
		}
		if _, ok := known[e.DedupKey()]; ok {
			continue
		}
		entries = append(entries, auditEntry(*m, e, scorelog.Snapshot{Home: home, Away: away}, now))
	}
	return entries, derived
}

// auditEntry keys the entry by match and event so a replayed cycle rewrites
// rather than duplicates it.
func auditEntry(m match.Match, e match.Event, score scorelog.Snapshot, now time.Time) scorelog.Entry {
	return scorelog.Entry{
		ID:            m.ID + "|" + e.DedupKey(),
		MatchID:       m.ID,
		CompetitionID: m.CompetitionID,
		EventKey:      e.DedupKey(),
		Kind:          e.Kind,
		Side:          e.Side,
		Minute:        e.Minute,
		Player:        e.Player,
		Score:         score,
		Derived:       e.Derived,
		Source:        e.Source,
		RecordedAt:    now,
	}
}

func eventKeys(events []match.Event) map[string]struct{} {
	keys := make(map[string]struct{}, len(events))
	for _, e := range events {
		keys[e.DedupKey()] = struct{}{}
	}
	return keys
}
