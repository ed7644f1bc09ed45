package espn

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// kickoffTolerance bounds how far ESPN's kickoff may sit from ours for a
// candidate to count as the same fixture.
const kickoffTolerance = 3 * time.Hour

// Words too common in club names to identify a team on their own.
var commonWords = map[string]struct{}{
	"club": {}, "city": {}, "united": {}, "town": {}, "athletic": {},
	"sporting": {}, "real": {}, "calcio": {}, "football": {}, "association": {},
}

// ResolveEventID finds the ESPN event id of m: the stored cross reference
// when there is one, otherwise the single scoreboard entry around the match
// day whose teams both match by name. Ambiguity resolves to "".
func (c *Client) ResolveEventID(ctx context.Context, comp usecase.Competition, m match.Match) (string, error) {
	if id := m.ExternalID(match.SourceESPN); id != "" {
		return id, nil
	}
	if m.Source == match.SourceESPN {
		return m.ID, nil
	}
	if m.KickoffAt.IsZero() || comp.LeagueSlug == "" {
		return "", nil
	}

	day := m.MatchDay()
	events, err := c.scoreboard(ctx, comp, day.AddDate(0, 0, -1), day.AddDate(0, 0, 2))
	if err != nil {
		return "", err
	}
	return bestCandidate(events, m), nil
}

func bestCandidate(events []apiEvent, m match.Match) string {
	best, bestScore, tied := "", 0, false
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		var c apiCompetition
		if len(ev.Competitions) > 0 {
			c = ev.Competitions[0]
		}
		s := teamsOf(c, firstNonEmpty(ev.Name, ev.ShortName))

		homeScore, awayScore := nameScore(m.HomeTeam, s.home), nameScore(m.AwayTeam, s.away)
		if homeScore == 0 || awayScore == 0 {
			continue
		}
		if kickoff, ok := parseTime(firstNonEmpty(ev.Date, c.Date)); ok {
			if d := kickoff.Sub(m.KickoffAt); d > kickoffTolerance || d < -kickoffTolerance {
				continue
			}
		}

		switch score := homeScore + awayScore; {
		case score > bestScore:
			best, bestScore, tied = string(ev.ID), score, false
		case score == bestScore:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}

// nameScore is 2 when one name contains the other after folding, 1 when they
// share a distinctive word, 0 otherwise.
func nameScore(ours, theirs match.TeamRef) int {
	score := 0
	for _, a := range []string{ours.Name, ours.ShortName} {
		for _, b := range []string{theirs.Name, theirs.ShortName} {
			score = max(score, compareNames(textnorm.Key(a), textnorm.Key(b)))
		}
	}
	return score
}

func compareNames(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b || containsWords(a, b) || containsWords(b, a) {
		return 2
	}
	words := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		if distinctive(w) {
			words[w] = struct{}{}
		}
	}
	for _, w := range strings.Fields(b) {
		if _, ok := words[w]; ok {
			return 1
		}
	}
	return 0
}

func containsWords(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func distinctive(word string) bool {
	if len(word) < 4 {
		return false
	}
	_, common := commonWords[word]
	return !common
}
