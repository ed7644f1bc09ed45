package footballdata

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/domain/timeline"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

var goalKinds = map[string]match.EventKind{
	"REGULAR": match.KindGoal,
	"OWN":     match.KindOwnGoal,
	"PENALTY": match.KindPenalty,
}

var cardKinds = map[string]match.EventKind{
	"YELLOW":     match.KindYellowCard,
	"YELLOW_RED": match.KindSecondYellow,
	"RED":        match.KindRedCard,
}

func normalizeMatch(raw apiMatch, comp usecase.Competition, now time.Time) (match.Match, bool) {
	id := idString(raw.ID)
	if id == "" {
		return match.Match{}, false
	}

	m := match.Match{
		ID:            id,
		Source:        match.SourceFootballData,
		CompetitionID: comp.Code,
		Status:        match.NormalizeStatus(raw.Status),
		Venue:         strings.TrimSpace(raw.Venue),
		ExternalRefs:  map[string]string{match.SourceFootballData: id},
		CreatedAt:     now,
		LastUpdated:   now,
	}
	if raw.Competition != nil {
		m.CompetitionName = strings.TrimSpace(raw.Competition.Name)
	}
	if m.CompetitionName == "" {
		m.CompetitionName = comp.Name
	}
	if raw.HomeTeam != nil {
		m.HomeTeam = teamRef(raw.HomeTeam.apiTeamRef)
	}
	if raw.AwayTeam != nil {
		m.AwayTeam = teamRef(raw.AwayTeam.apiTeamRef)
	}
	if kickoff, ok := parseTime(raw.UTCDate); ok {
		m.KickoffAt = kickoff
	}
	if raw.Score != nil && raw.Score.FullTime != nil {
		m.Score = match.Score{Home: raw.Score.FullTime.Home, Away: raw.Score.FullTime.Away}
	}
	if raw.Minute != nil {
		m.Clock = timeline.FormatClock(*raw.Minute, deref(raw.InjuryTime))
	}
	if updated, ok := parseTime(raw.LastUpdated); ok {
		m.LastUpdated = updated
	}
	return m, true
}

func teamRef(raw apiTeamRef) match.TeamRef {
	return match.TeamRef{
		ID:        idString(raw.ID),
		Name:      strings.TrimSpace(raw.Name),
		ShortName: strings.TrimSpace(raw.ShortName),
		Crest:     strings.TrimSpace(raw.Crest),
	}
}

func teamSides(raw apiMatch) map[string]match.Side {
	sides := make(map[string]match.Side, 2)
	if raw.HomeTeam != nil && raw.HomeTeam.ID > 0 {
		sides[idString(raw.HomeTeam.ID)] = match.SideHome
	}
	if raw.AwayTeam != nil && raw.AwayTeam.ID > 0 {
		sides[idString(raw.AwayTeam.ID)] = match.SideAway
	}
	return sides
}

// normalizeEvents flattens goals, bookings and substitutions. football-data
// has no event ids, so identity falls back to description plus clock; both
// are built from stable fields.
func normalizeEvents(raw apiMatch, sides map[string]match.Side, matchID string, now time.Time) []match.Event {
	out := make([]match.Event, 0, len(raw.Goals)+len(raw.Bookings)+len(raw.Substitutions))

	for _, g := range raw.Goals {
		kind, ok := goalKinds[strings.ToUpper(strings.TrimSpace(g.Type))]
		if !ok {
			kind = match.KindGoal
		}
		teamID, teamName := teamOf(g.Team)
		scorer, assist := personName(g.Scorer), personName(g.Assist)

		desc := kindLabel(kind) + "! " + teamName
		if scorer != "" {
			desc += ": " + scorer
		}
		if assist != "" {
			desc += " (assist " + assist + ")"
		}
		out = append(out, newEvent(matchID, kind, g.Minute, g.InjuryTime, sides, teamID, scorer, assist, desc, now))
	}

	for _, b := range raw.Bookings {
		kind, ok := cardKinds[strings.ToUpper(strings.TrimSpace(b.Card))]
		if !ok {
			continue
		}
		teamID, teamName := teamOf(b.Team)
		player := personName(b.Player)
		desc := kindLabel(kind) + " for " + player + " (" + teamName + ")"
		out = append(out, newEvent(matchID, kind, b.Minute, nil, sides, teamID, player, "", desc, now))
	}

	for _, s := range raw.Substitutions {
		teamID, teamName := teamOf(s.Team)
		in, outName := personName(s.PlayerIn), personName(s.PlayerOut)
		desc := "Substitution, " + teamName + ". " + in + " replaces " + outName + "."
		out = append(out, newEvent(matchID, match.KindSubstitution, s.Minute, nil, sides, teamID, in, "", desc, now))
	}
	return out
}

func newEvent(matchID string, kind match.EventKind, minute, extra *int, sides map[string]match.Side, teamID, player, assist, desc string, now time.Time) match.Event {
	e := match.Event{
		MatchID:     matchID,
		Kind:        kind,
		Side:        sides[teamID],
		TeamID:      teamID,
		Player:      player,
		Assist:      assist,
		Description: strings.TrimSpace(desc),
		Source:      match.SourceFootballData,
		CreatedAt:   now,
	}
	if minute != nil && *minute > 0 {
		m := min(*minute, 120)
		e.Minute = &m
		e.Clock = timeline.FormatClock(m, deref(extra))
		if extra != nil && *extra > 0 {
			x := *extra
			e.ExtraMinute = &x
		}
	}
	return e
}

func kindLabel(kind match.EventKind) string {
	switch kind {
	case match.KindOwnGoal:
		return "Own goal"
	case match.KindPenalty:
		return "Penalty goal"
	case match.KindYellowCard:
		return "Yellow card"
	case match.KindSecondYellow:
		return "Second yellow card"
	case match.KindRedCard:
		return "Red card"
	default:
		return "Goal"
	}
}

func normalizeStatistics(raw apiMatch, matchID string, now time.Time) *matchstats.Statistics {
	var home, away *apiTeamStatistics
	if raw.HomeTeam != nil {
		home = raw.HomeTeam.Statistics
	}
	if raw.AwayTeam != nil {
		away = raw.AwayTeam.Statistics
	}
	if home == nil && away == nil {
		return nil
	}
	if home == nil {
		home = &apiTeamStatistics{}
	}
	if away == nil {
		away = &apiTeamStatistics{}
	}

	pair := func(h, a *int) matchstats.Pair { return matchstats.Pair{Home: deref(h), Away: deref(a)} }
	stats := matchstats.Statistics{
		MatchID:       matchID,
		Possession:    matchstats.Pair{Home: roundPct(home.BallPossession), Away: roundPct(away.BallPossession)},
		Shots:         pair(home.Shots, away.Shots),
		ShotsOnTarget: pair(home.ShotsOnGoal, away.ShotsOnGoal),
		Corners:       pair(home.CornerKicks, away.CornerKicks),
		Fouls:         pair(home.Fouls, away.Fouls),
		YellowCards:   pair(home.YellowCards, away.YellowCards),
		RedCards:      matchstats.Pair{Home: deref(home.RedCards) + deref(home.YellowRedCards), Away: deref(away.RedCards) + deref(away.YellowRedCards)},
		Offsides:      pair(home.Offsides, away.Offsides),
		Saves:         pair(home.Saves, away.Saves),
		Source:        match.SourceFootballData,
		UpdatedAt:     now,
	}
	if stats.Possession.IsZero() {
		// Keep the sheet visibly incomplete so another source can fill it.
		return &stats
	}
	stats = stats.Normalize()
	return &stats
}

func normalizeLineups(raw apiMatch, matchID string, now time.Time) []lineup.Lineup {
	out := make([]lineup.Lineup, 0, 2)
	for _, side := range []struct {
		team *apiMatchTeam
		side match.Side
	}{{raw.HomeTeam, match.SideHome}, {raw.AwayTeam, match.SideAway}} {
		if side.team == nil || side.team.ID <= 0 {
			continue
		}
		if len(side.team.Lineup) == 0 && len(side.team.Bench) == 0 {
			continue
		}
		out = append(out, lineup.Lineup{
			MatchID:     matchID,
			TeamID:      idString(side.team.ID),
			TeamName:    strings.TrimSpace(side.team.Name),
			Side:        side.side,
			Formation:   strings.TrimSpace(side.team.Formation),
			Starters:    players(side.team.Lineup),
			Substitutes: players(side.team.Bench),
			Source:      match.SourceFootballData,
			UpdatedAt:   now,
		})
	}
	return out
}

func players(raw []apiLineupPlayer) []lineup.Player {
	out := make([]lineup.Player, 0, len(raw))
	for _, p := range raw {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		out = append(out, lineup.Player{
			ID:       idString(p.ID),
			Name:     name,
			Position: strings.TrimSpace(p.Position),
			Jersey:   jersey(p.ShirtNumber),
		})
	}
	return out
}

// normalizeStandings keeps TOTAL tables; HOME/AWAY splits are dropped. Feeds
// without a type are kept as is.
func normalizeStandings(env standingsEnvelope, competitionID string, now time.Time) []leaguestanding.Standing {
	hasTotal := false
	for _, s := range env.Standings {
		if strings.EqualFold(s.Type, "TOTAL") {
			hasTotal = true
			break
		}
	}

	out := make([]leaguestanding.Standing, 0)
	for _, s := range env.Standings {
		if hasTotal && !strings.EqualFold(s.Type, "TOTAL") {
			continue
		}
		for _, row := range s.Table {
			if row.Team == nil || row.Team.ID <= 0 {
				continue
			}
			updated := now
			out = append(out, leaguestanding.Standing{
				CompetitionID:  competitionID,
				Group:          strings.TrimSpace(s.Group),
				TeamID:         idString(row.Team.ID),
				TeamName:       strings.TrimSpace(row.Team.Name),
				Crest:          strings.TrimSpace(row.Team.Crest),
				Position:       row.Position,
				Played:         row.PlayedGames,
				Won:            row.Won,
				Draw:           row.Draw,
				Lost:           row.Lost,
				GoalsFor:       row.GoalsFor,
				GoalsAgainst:   row.GoalsAgainst,
				GoalDifference: row.GoalDifference,
				Points:         row.Points,
				Form:           strings.TrimSpace(row.Form),
				UpdatedAt:      &updated,
			})
		}
	}
	return out
}

func normalizeTeams(env teamsEnvelope, competitionID string, now time.Time) []team.Team {
	out := make([]team.Team, 0, len(env.Teams))
	for _, raw := range env.Teams {
		if raw.ID <= 0 || strings.TrimSpace(raw.Name) == "" {
			continue
		}
		t := team.Team{
			ID:            idString(raw.ID),
			CompetitionID: competitionID,
			Name:          strings.TrimSpace(raw.Name),
			Short:         strings.TrimSpace(raw.ShortName),
			TLA:           strings.TrimSpace(raw.TLA),
			Crest:         strings.TrimSpace(raw.Crest),
			Venue:         strings.TrimSpace(raw.Venue),
			Coach:         personName(raw.Coach),
			UpdatedAt:     now,
		}
		for _, p := range raw.Squad {
			if p.ID <= 0 {
				continue
			}
			t.Squad = append(t.Squad, team.SquadMember{
				ID:          idString(p.ID),
				Name:        strings.TrimSpace(p.Name),
				Position:    strings.TrimSpace(p.Position),
				Nationality: strings.TrimSpace(p.Nationality),
				Jersey:      jersey(p.ShirtNumber),
			})
		}
		out = append(out, t)
	}
	return out
}

func teamOf(t *apiTeamRef) (id, name string) {
	if t == nil {
		return "", ""
	}
	return idString(t.ID), strings.TrimSpace(t.Name)
}

func personName(p *apiPerson) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Name)
}

func jersey(n *int) string {
	if n == nil || *n <= 0 {
		return ""
	}
	return strconv.Itoa(*n)
}

func roundPct(v *float64) int {
	if v == nil {
		return 0
	}
	return int(*v + 0.5)
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
