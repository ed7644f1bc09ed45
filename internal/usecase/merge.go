package usecase

import (
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
)

// MergeEvents unions incoming into existing by dedup key. A known event keeps
// its position and only gains fields it was missing; unknown events are
// appended. The result is ordered by clock, events without a minute last.
// Merging the same input twice yields the same list.
func MergeEvents(existing, incoming []match.Event) []match.Event {
	out := make([]match.Event, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))
	for _, list := range [][]match.Event{existing, incoming} {
		for _, e := range list {
			key := e.DedupKey()
			if i, ok := index[key]; ok {
				fillEvent(&out[i], e)
				continue
			}
			index[key] = len(out)
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

func fillEvent(dst *match.Event, src match.Event) {
	if dst.Kind == match.KindOther && src.Kind != "" {
		dst.Kind = src.Kind
	}
	if dst.Minute == nil && src.Minute != nil {
		v := *src.Minute
		dst.Minute = &v
	}
	if dst.ExtraMinute == nil && src.ExtraMinute != nil {
		v := *src.ExtraMinute
		dst.ExtraMinute = &v
	}
	fillString(&dst.Clock, src.Clock)
	if dst.Side == match.SideUnknown {
		dst.Side = src.Side
	}
	fillString(&dst.TeamID, src.TeamID)
	fillString(&dst.Player, src.Player)
	fillString(&dst.Assist, src.Assist)
	fillString(&dst.Description, src.Description)
	fillString(&dst.Source, src.Source)
	if dst.CreatedAt.IsZero() {
		dst.CreatedAt = src.CreatedAt
	}
}

func sortEvents(events []match.Event) {
	minuteOf := func(e match.Event) (int, int, bool) {
		if e.Minute == nil {
			return 0, 0, false
		}
		extra := 0
		if e.ExtraMinute != nil {
			extra = *e.ExtraMinute
		}
		return *e.Minute, extra, true
	}
	sort.SliceStable(events, func(i, j int) bool {
		mi, xi, oki := minuteOf(events[i])
		mj, xj, okj := minuteOf(events[j])
		switch {
		case oki != okj:
			return oki
		case mi != mj:
			return mi < mj
		default:
			return xi < xj
		}
	})
}

// MergeCommentary unions two commentary lists by dedup key and returns them in
// match order.
func MergeCommentary(existing, incoming []commentary.Entry) []commentary.Entry {
	out := make([]commentary.Entry, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))
	for _, list := range [][]commentary.Entry{existing, incoming} {
		for _, e := range list {
			key := e.DedupKey()
			if i, ok := index[key]; ok {
				fillString(&out[i].Time, e.Time)
				fillString(&out[i].Source, e.Source)
				continue
			}
			index[key] = len(out)
			out = append(out, e)
		}
	}
	return commentary.Sort(out)
}

// MergeMatch folds a provider's view of a match into the stored record. The
// stored identity, source, creation time and admin flag never change; team
// and descriptive fields are only filled when empty; live fields (status,
// score, clock) follow the provider but are never cleared by a provider that
// does not report them, and a finished match does not fall back to live.
func MergeMatch(existing *match.Match, incoming match.Match, now time.Time) match.Match {
	if existing == nil {
		m := incoming
		m.Status = match.NormalizeStatus(m.Status)
		m.Events = MergeEvents(nil, m.Events)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.LastUpdated = now
		return m
	}

	m := *existing
	m.Events = append([]match.Event(nil), existing.Events...)
	m.ExternalRefs = maps.Clone(existing.ExternalRefs)

	fillString(&m.CompetitionID, incoming.CompetitionID)
	fillString(&m.CompetitionName, incoming.CompetitionName)
	fillTeam(&m.HomeTeam, incoming.HomeTeam)
	fillTeam(&m.AwayTeam, incoming.AwayTeam)
	fillString(&m.Venue, incoming.Venue)
	if !incoming.KickoffAt.IsZero() && (m.KickoffAt.IsZero() || !m.CreatedByAdmin) {
		m.KickoffAt = incoming.KickoffAt
	}

	if status := strings.TrimSpace(incoming.Status); status != "" && !regresses(m.Status, status) {
		m.Status = match.NormalizeStatus(status)
	}
	if incoming.Score.Known() {
		home, away := incoming.Score.Values()
		m.Score = match.NewScore(home, away)
	}
	if incoming.Clock != "" {
		m.Clock = incoming.Clock
	}
	if !match.IsLive(m.Status) {
		m.Clock = ""
	}

	for provider, id := range incoming.ExternalRefs {
		if id == "" {
			continue
		}
		if m.ExternalRefs == nil {
			m.ExternalRefs = make(map[string]string, len(incoming.ExternalRefs))
		}
		if _, ok := m.ExternalRefs[provider]; !ok {
			m.ExternalRefs[provider] = id
		}
	}

	m.Events = MergeEvents(m.Events, incoming.Events)
	m.ExplicitFeed = m.ExplicitFeed || incoming.ExplicitFeed
	m.DetailsFinal = m.DetailsFinal || incoming.DetailsFinal
	m.CreatedByAdmin = m.CreatedByAdmin || incoming.CreatedByAdmin
	m.LastUpdated = now
	return m
}

// regresses reports a provider lagging behind: a finished match reported as
// scheduled or live again.
func regresses(current, next string) bool {
	return match.IsFinished(current) && !match.IsFinished(next) && phase(next) >= 0
}

// phase ranks the lifecycle statuses; other statuses (postponed, cancelled)
// rank -1 and always apply.
func phase(status string) int {
	switch match.NormalizeStatus(status) {
	case match.StatusScheduled, match.StatusTimed:
		return 0
	case match.StatusInPlay, match.StatusPaused:
		return 1
	case match.StatusFinished:
		return 2
	default:
		return -1
	}
}

func fillTeam(dst *match.TeamRef, src match.TeamRef) {
	fillString(&dst.ID, src.ID)
	fillString(&dst.Name, src.Name)
	fillString(&dst.ShortName, src.ShortName)
	fillString(&dst.Crest, src.Crest)
}

// PickLineups chooses, per team, the first complete sheet among the
// candidate lists (in priority order), falling back to the first incomplete
// one. Teams are matched by side when known, since providers disagree on
// team ids, and by team id otherwise.
func PickLineups(candidates ...[]lineup.Lineup) []lineup.Lineup {
	chosen := make(map[string]lineup.Lineup)
	order := make([]string, 0, 2)
	for _, list := range candidates {
		for _, l := range list {
			key := lineupSlot(l)
			current, ok := chosen[key]
			switch {
			case !ok:
				order = append(order, key)
				chosen[key] = l
			case current.Incomplete() && !l.Incomplete():
				chosen[key] = l
			}
		}
	}

	out := make([]lineup.Lineup, 0, len(order))
	for _, key := range order {
		out = append(out, chosen[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Side > out[j].Side })
	return out
}

func lineupSlot(l lineup.Lineup) string {
	if l.Side != match.SideUnknown {
		return l.MatchID + ":" + string(l.Side)
	}
	return l.Key()
}

// PickStatistics returns the first complete sheet (possession reported), or
// the first sheet at all when none is complete. Callers list fresh sheets
// before the stored one, so an incomplete stored sheet never outlives a
// fresh one. The result is normalized.
func PickStatistics(candidates ...*matchstats.Statistics) *matchstats.Statistics {
	var fallback *matchstats.Statistics
	for _, s := range candidates {
		if s == nil {
			continue
		}
		if !s.Incomplete() {
			out := s.Normalize()
			return &out
		}
		if fallback == nil {
			fallback = s
		}
	}
	if fallback == nil {
		return nil
	}
	out := fallback.Normalize()
	return &out
}

func fillString(dst *string, src string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = strings.TrimSpace(src)
	}
}
