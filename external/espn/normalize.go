package espn

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/eventclass"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
	"github.com/riskibarqy/matchfeed/internal/domain/timeline"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// MapStatus translates ESPN's status (type name plus pre/in/post state) into
// the canonical status vocabulary. The name wins for the states the coarse
// state cannot express.
func MapStatus(state, name string) string {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "STATUS_HALFTIME":
		return match.StatusPaused
	case "STATUS_POSTPONED":
		return "POSTPONED"
	case "STATUS_CANCELED", "STATUS_CANCELLED":
		return "CANCELLED"
	case "STATUS_SUSPENDED", "STATUS_ABANDONED":
		return "SUSPENDED"
	}
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "pre":
		return match.StatusTimed
	case "in":
		return match.StatusInPlay
	case "post":
		return match.StatusFinished
	default:
		return match.NormalizeStatus(state)
	}
}

// NormalizeClock turns ESPN display clocks ("67'", "45'+2'", "90+4'") into the
// canonical "NN'" / "NN'+M'" form. Unparseable input yields "".
func NormalizeClock(display string) string {
	c, ok := timeline.ParseClock(display)
	if !ok {
		return ""
	}
	return timeline.FormatClock(c.Base, c.Stoppage)
}

type fixtureSides struct {
	home, away           match.TeamRef
	homeScore, awayScore *int
}

// teamsOf reads both sides of a competition: embedded team objects first,
// then the competitor list, then the "Away at Home" event name.
func teamsOf(c apiCompetition, eventName string) fixtureSides {
	var s fixtureSides
	if c.HomeTeam != nil {
		s.home = teamRef(c.HomeTeam)
	}
	if c.AwayTeam != nil {
		s.away = teamRef(c.AwayTeam)
	}
	for _, comp := range c.Competitors {
		ref := match.TeamRef{ID: string(comp.ID)}
		if comp.Team != nil {
			ref = teamRef(comp.Team)
			if ref.ID == "" {
				ref.ID = string(comp.ID)
			}
		}
		switch strings.ToLower(comp.HomeAway) {
		case "home":
			if s.home.IsZero() {
				s.home = ref
			}
			s.homeScore = comp.Score.Value
		case "away":
			if s.away.IsZero() {
				s.away = ref
			}
			s.awayScore = comp.Score.Value
		}
	}
	if s.home.Name == "" || s.away.Name == "" {
		if home, away, ok := splitEventName(eventName); ok {
			if s.home.Name == "" {
				s.home.Name = home
			}
			if s.away.Name == "" {
				s.away.Name = away
			}
		}
	}
	return s
}

func splitEventName(name string) (home, away string, ok bool) {
	name = strings.TrimSpace(name)
	if a, h, found := strings.Cut(name, " at "); found {
		return strings.TrimSpace(h), strings.TrimSpace(a), true
	}
	for _, sep := range []string{" vs. ", " vs ", " v "} {
		if h, a, found := strings.Cut(name, sep); found {
			return strings.TrimSpace(h), strings.TrimSpace(a), true
		}
	}
	return "", "", false
}

func teamRef(t *apiTeam) match.TeamRef {
	ref := match.TeamRef{
		ID:        string(t.ID),
		Name:      firstNonEmpty(t.DisplayName, t.Name),
		ShortName: firstNonEmpty(t.ShortDisplayName, t.Abbreviation),
		Crest:     strings.TrimSpace(t.Logo),
	}
	if ref.Crest == "" && len(t.Logos) > 0 {
		ref.Crest = strings.TrimSpace(t.Logos[0].Href)
	}
	return ref
}

func normalizeEvent(ev apiEvent, comp usecase.Competition, now time.Time) (match.Match, bool) {
	id := string(ev.ID)
	if id == "" {
		return match.Match{}, false
	}

	var c apiCompetition
	if len(ev.Competitions) > 0 {
		c = ev.Competitions[0]
	}
	status := ev.Status
	if status == nil {
		status = c.Status
	}
	s := teamsOf(c, firstNonEmpty(ev.Name, ev.ShortName))

	m := match.Match{
		ID:              id,
		Source:          match.SourceESPN,
		CompetitionID:   comp.Code,
		CompetitionName: comp.Name,
		HomeTeam:        s.home,
		AwayTeam:        s.away,
		ExternalRefs:    map[string]string{match.SourceESPN: id},
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if c.Venue != nil {
		m.Venue = strings.TrimSpace(c.Venue.FullName)
	}
	if kickoff, ok := parseTime(firstNonEmpty(ev.Date, c.Date)); ok {
		m.KickoffAt = kickoff
	}
	if status != nil && status.Type != nil {
		m.Status = MapStatus(status.Type.State, status.Type.Name)
	}
	// ESPN reports 0-0 before kickoff; the score is only real once play began.
	// Without a status block the status stays empty and the merge keeps what
	// is stored.
	if m.Status != "" && m.Status != match.StatusTimed && m.Status != match.StatusScheduled && s.homeScore != nil && s.awayScore != nil {
		m.Score = match.NewScore(*s.homeScore, *s.awayScore)
	}
	if status != nil && match.IsLive(m.Status) {
		m.Clock = NormalizeClock(status.DisplayClock)
	}
	return m, true
}

func normalizeSummary(env summaryEnvelope, comp usecase.Competition, m match.Match, eventID string, now time.Time) usecase.MatchDetail {
	detail := usecase.MatchDetail{Source: match.SourceESPN}

	var header apiCompetition
	if env.Header != nil && len(env.Header.Competitions) > 0 {
		header = env.Header.Competitions[0]
	}
	ev := apiEvent{ID: flexString(eventID), Date: header.Date, Status: header.Status, Competitions: []apiCompetition{header}}
	if refreshed, ok := normalizeEvent(ev, comp, now); ok {
		refreshed.ID = m.ID
		detail.Match = &refreshed
	}

	s := teamsOf(header, "")
	sides := make(map[string]match.Side, 2)
	if s.home.ID != "" {
		sides[s.home.ID] = match.SideHome
	}
	if s.away.ID != "" {
		sides[s.away.ID] = match.SideAway
	}
	homeName := firstNonEmpty(m.HomeTeam.Name, s.home.Name)
	awayName := firstNonEmpty(m.AwayTeam.Name, s.away.Name)

	for _, play := range env.KeyEvents {
		if e, ok := normalizePlay(play, m.ID, sides, homeName, awayName, now); ok {
			detail.Events = append(detail.Events, e)
		}
	}
	for _, item := range env.Commentary {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		raw := commentary.RawEntry{MatchID: m.ID, Text: text, Source: match.SourceESPN, Sequence: item.Sequence}
		if item.Time != nil {
			raw.Time = item.Time.DisplayValue
		}
		if item.Play != nil {
			raw.ID = string(item.Play.ID)
			if item.Play.Clock != nil {
				raw.Clock = item.Play.Clock.DisplayValue
			}
		}
		detail.Commentary = append(detail.Commentary, raw)
	}
	detail.Lineups = normalizeRosters(env.Rosters, sides, m.ID, now)
	if env.Boxscore != nil {
		detail.Statistics = normalizeBoxscore(env.Boxscore.Teams, sides, m.ID, now)
	}
	detail.Highlights = normalizeVideos(env.Videos, comp.Code, m.ID, now)
	return detail
}

// normalizePlay maps one key event. ESPN's team on the play is the credited
// side; when it is missing the side is guessed from the text, and for own
// goals the guess names the scorer's team, so it is flipped.
func normalizePlay(play apiPlay, matchID string, sides map[string]match.Side, homeName, awayName string, now time.Time) (match.Event, bool) {
	var typeKey, typeText string
	if play.Type != nil {
		typeKey, typeText = play.Type.Type, play.Type.Text
	}
	text := firstNonEmpty(play.Text, play.ShortText, typeText)
	if text == "" {
		return match.Event{}, false
	}

	e := match.Event{
		ID:          string(play.ID),
		MatchID:     matchID,
		Kind:        eventclass.ClassifyAny(typeKey, typeText, text),
		Description: textnorm.StripMarkup(text),
		Source:      match.SourceESPN,
		CreatedAt:   now,
	}

	if play.Team != nil {
		e.TeamID = string(play.Team.ID)
		e.Side = sides[e.TeamID]
	}
	if e.Side == match.SideUnknown {
		e.Side = eventclass.AttributeSide(text, homeName, awayName)
		if e.Kind == match.KindOwnGoal {
			e.Side = e.Side.Opposite()
		}
	}

	if len(play.Participants) > 0 && play.Participants[0].Athlete != nil {
		e.Player = strings.TrimSpace(play.Participants[0].Athlete.DisplayName)
	}
	if e.Kind.IsScoring() && len(play.Participants) > 1 && play.Participants[1].Athlete != nil {
		e.Assist = strings.TrimSpace(play.Participants[1].Athlete.DisplayName)
	}

	if play.Clock != nil {
		setClock(&e, play.Clock)
	}
	return e, true
}

func setClock(e *match.Event, clock *apiClock) {
	if c, ok := timeline.ParseClock(clock.DisplayValue); ok {
		base := min(c.Base, timeline.MaxMinute)
		e.Minute = &base
		if c.Stoppage > 0 {
			extra := c.Stoppage
			e.ExtraMinute = &extra
		}
		e.Clock = timeline.FormatClock(base, c.Stoppage)
		return
	}
	if clock.Value > 0 {
		minute := min(int(math.Ceil(clock.Value/60)), timeline.MaxMinute)
		e.Minute = &minute
		e.Clock = timeline.FormatClock(minute, 0)
	}
}

func normalizeRosters(rosters []apiRoster, sides map[string]match.Side, matchID string, now time.Time) []lineup.Lineup {
	out := make([]lineup.Lineup, 0, len(rosters))
	for _, r := range rosters {
		if r.Team == nil || len(r.Roster) == 0 {
			continue
		}
		l := lineup.Lineup{
			MatchID:   matchID,
			TeamID:    string(r.Team.ID),
			TeamName:  firstNonEmpty(r.Team.DisplayName, r.Team.Name),
			Side:      sideOf(r.HomeAway, r.Team, sides),
			Formation: strings.TrimSpace(r.Formation),
			Source:    match.SourceESPN,
			UpdatedAt: now,
		}
		if l.TeamID == "" {
			continue
		}
		for _, entry := range r.Roster {
			if entry.Athlete == nil || strings.TrimSpace(entry.Athlete.DisplayName) == "" {
				continue
			}
			p := lineup.Player{
				ID:        string(entry.Athlete.ID),
				Name:      strings.TrimSpace(entry.Athlete.DisplayName),
				Jersey:    string(entry.Jersey),
				SubbedIn:  bool(entry.SubbedIn),
				SubbedOut: bool(entry.SubbedOut),
			}
			if entry.Position != nil {
				p.Position = firstNonEmpty(entry.Position.Abbreviation, entry.Position.DisplayName)
			}
			if entry.Starter {
				l.Starters = append(l.Starters, p)
			} else {
				l.Substitutes = append(l.Substitutes, p)
			}
		}
		out = append(out, l)
	}
	return out
}

func sideOf(homeAway string, t *apiTeam, sides map[string]match.Side) match.Side {
	switch strings.ToLower(strings.TrimSpace(homeAway)) {
	case "home":
		return match.SideHome
	case "away":
		return match.SideAway
	}
	if t == nil {
		return match.SideUnknown
	}
	return sides[string(t.ID)]
}

func normalizeBoxscore(teams []apiBoxscoreTeam, sides map[string]match.Side, matchID string, now time.Time) *matchstats.Statistics {
	stats := matchstats.Statistics{MatchID: matchID, Source: match.SourceESPN, UpdatedAt: now}
	seen := false
	for _, t := range teams {
		side := sideOf(t.HomeAway, t.Team, sides)
		if side == match.SideUnknown {
			continue
		}
		seen = true
		for _, item := range t.Statistics {
			if value, ok := parseNumber(string(item.DisplayValue)); ok {
				SetStat(&stats, side, item.Name, value)
			}
		}
	}
	if !seen {
		return nil
	}
	return FinishStatistics(stats)
}

// SetStat stores one ESPN team statistic by its API name. Unknown names are
// ignored and reported as false.
func SetStat(s *matchstats.Statistics, side match.Side, name string, value float64) bool {
	var pair *matchstats.Pair
	switch name {
	case "possessionPct":
		pair = &s.Possession
	case "totalShots":
		pair = &s.Shots
	case "shotsOnTarget":
		pair = &s.ShotsOnTarget
	case "wonCorners":
		pair = &s.Corners
	case "foulsCommitted":
		pair = &s.Fouls
	case "yellowCards":
		pair = &s.YellowCards
	case "redCards":
		pair = &s.RedCards
	case "offsides":
		pair = &s.Offsides
	case "saves":
		pair = &s.Saves
	default:
		return false
	}
	v := int(math.Round(value))
	switch side {
	case match.SideHome:
		pair.Home = v
	case match.SideAway:
		pair.Away = v
	default:
		return false
	}
	return true
}

// FinishStatistics normalizes a sheet that has possession data and leaves a
// sheet without it raw, so the merge can tell it is incomplete.
func FinishStatistics(stats matchstats.Statistics) *matchstats.Statistics {
	if !stats.Possession.IsZero() {
		stats = stats.Normalize()
	}
	return &stats
}

func normalizeVideos(videos []apiVideo, competitionID, matchID string, now time.Time) []news.Item {
	out := make([]news.Item, 0, len(videos))
	for _, v := range videos {
		headline := textnorm.StripMarkup(v.Headline)
		if v.ID == "" || headline == "" {
			continue
		}
		item := news.Item{
			ID:            string(v.ID),
			CompetitionID: competitionID,
			MatchID:       matchID,
			Kind:          news.KindHighlight,
			Headline:      headline,
			Description:   textnorm.StripMarkup(v.Description),
			URL:           linkOf(v.Links),
			ImageURL:      strings.TrimSpace(v.Thumbnail),
			PublishedAt:   now,
			Source:        match.SourceESPN,
		}
		if published, ok := parseTime(firstNonEmpty(v.OriginalPublishDate, v.LastModified)); ok {
			item.PublishedAt = published
		}
		out = append(out, item)
	}
	return out
}

func normalizeNews(env newsEnvelope, competitionID string, now time.Time) []news.Item {
	out := make([]news.Item, 0, len(env.Articles))
	for _, a := range env.Articles {
		id := firstNonEmpty(string(a.ID), a.DataSourceIdentifier)
		headline := textnorm.StripMarkup(a.Headline)
		if id == "" || headline == "" {
			continue
		}
		item := news.Item{
			ID:            id,
			CompetitionID: competitionID,
			Kind:          news.KindArticle,
			Headline:      headline,
			Description:   textnorm.StripMarkup(a.Description),
			URL:           linkOf(a.Links),
			PublishedAt:   now,
			Source:        match.SourceESPN,
		}
		if len(a.Images) > 0 {
			item.ImageURL = firstNonEmpty(a.Images[0].URL, a.Images[0].Href)
		}
		if published, ok := parseTime(a.Published); ok {
			item.PublishedAt = published
		}
		out = append(out, item)
	}
	return out
}

func linkOf(links *apiLinks) string {
	if links == nil {
		return ""
	}
	for _, l := range []*apiLink{links.Web, links.Source} {
		if l != nil && strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02T15:04:05Z0700"}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
