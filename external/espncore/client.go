// Package espncore adapts ESPN's linked-resource core API. An event document
// links to its competition, competitors, scores, status and play collections;
// everything is walked through refgraph.
package espncore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchfeed/external/espn"
	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/eventclass"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/timeline"
	"github.com/riskibarqy/matchfeed/internal/platform/cache"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/refgraph"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	defaultBaseURL      = "https://sports.core.api.espn.com/v2/sports/soccer/leagues"
	defaultTeamCacheTTL = 6 * time.Hour
)

// Fetcher is the subset of httpfetch.Fetcher the adapter needs.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

type Config struct {
	BaseURL string
	// MaxPages bounds pagination of play and commentary collections.
	MaxPages int
	// TeamCacheTTL memoizes team documents, which do not change during a match.
	TeamCacheTTL time.Duration
	Logger       *logging.Logger
}

type Client struct {
	baseURL  string
	resolver *refgraph.Resolver
	teams    *refgraph.Resolver
	logger   *logging.Logger
	now      func() time.Time
}

func NewClient(fetcher Fetcher, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := cfg.TeamCacheTTL
	if ttl <= 0 {
		ttl = defaultTeamCacheTTL
	}

	fetch := func(ctx context.Context, rawURL string) ([]byte, error) {
		return fetcher.Get(ctx, rawURL, nil)
	}
	return &Client{
		baseURL:  baseURL,
		resolver: refgraph.NewResolver(fetch, refgraph.Options{MaxPages: cfg.MaxPages, IsFatal: IsFatal}),
		teams:    refgraph.NewResolver(fetch, refgraph.Options{IsFatal: IsFatal, Cache: cache.NewStore(ttl)}),
		logger:   logger.Named("espncore"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IsFatal reports errors that must abort a walk rather than degrade it: the
// permanent rejection latch, rate-limit exhaustion and cancellation.
func IsFatal(err error) bool {
	return errors.Is(err, usecase.ErrUpstreamRejected) ||
		errors.Is(err, usecase.ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) Name() string {
	return match.SourceESPNCore
}

// FetchMatchDetail reads the core event of m. Matches without a known ESPN
// event id are skipped; missing or broken links leave that part empty.
func (c *Client) FetchMatchDetail(ctx context.Context, comp usecase.Competition, m match.Match) (usecase.MatchDetail, error) {
	detail := usecase.MatchDetail{Source: match.SourceESPNCore}
	eventID := m.ExternalID(match.SourceESPN)
	if eventID == "" && m.Source == match.SourceESPN {
		eventID = m.ID
	}
	if eventID == "" || comp.LeagueSlug == "" {
		return detail, nil
	}

	eventURL := c.baseURL + "/" + url.PathEscape(comp.LeagueSlug) + "/events/" + url.PathEscape(eventID)
	body, err := c.resolver.Fetch(ctx, eventURL)
	if err != nil {
		return detail, fmt.Errorf("fetch core event=%s: %w", eventID, err)
	}
	var ev coreEvent
	if err := sonic.Unmarshal(body, &ev); err != nil {
		c.logger.WarnContext(ctx, "malformed core event", "event_id", eventID, "error", err)
		return detail, nil
	}
	if len(ev.Competitions) == 0 {
		return detail, nil
	}

	var competition coreCompetition
	if err := c.resolver.ResolveInto(ctx, ev.Competitions[0], &competition); err != nil {
		return detail, c.degrade(ctx, "competition", eventID, err)
	}

	now := c.now()
	refreshed := match.Match{
		ID:            m.ID,
		Source:        match.SourceESPNCore,
		CompetitionID: comp.Code,
		ExternalRefs:  map[string]string{match.SourceESPN: eventID},
		CreatedAt:     now,
		LastUpdated:   now,
	}
	if kickoff, ok := parseTime(firstNonEmpty(ev.Date, competition.Date)); ok {
		refreshed.KickoffAt = kickoff
	}

	if err := c.applyStatus(ctx, competition.Status, &refreshed); err != nil {
		if err := c.degrade(ctx, "status", eventID, err); err != nil {
			return detail, err
		}
	}

	sides := make(map[string]match.Side, 2)
	stats := matchstats.Statistics{MatchID: m.ID, Source: match.SourceESPNCore, UpdatedAt: now}
	statsSeen := false
	var homeScore, awayScore *int
	for _, raw := range competition.Competitors {
		var competitor coreCompetitor
		if err := c.resolver.ResolveInto(ctx, raw, &competitor); err != nil {
			if err := c.degrade(ctx, "competitor", eventID, err); err != nil {
				return detail, err
			}
			continue
		}
		side := sideOf(competitor.HomeAway)
		if side == match.SideUnknown {
			continue
		}

		ref, err := c.team(ctx, competitor)
		if err != nil {
			return detail, err
		}
		if ref.ID != "" {
			sides[ref.ID] = side
		}
		score, err := c.score(ctx, competitor.Score)
		if err != nil {
			return detail, err
		}
		if side == match.SideHome {
			refreshed.HomeTeam, homeScore = ref, score
		} else {
			refreshed.AwayTeam, awayScore = ref, score
		}

		seen, err := c.statistics(ctx, competitor.Statistics, side, &stats)
		if err != nil {
			return detail, err
		}
		statsSeen = statsSeen || seen
	}
	// Status stays empty when the status link is broken; without it the
	// score cannot be told apart from the pre-match 0-0.
	if homeScore != nil && awayScore != nil && refreshed.Status != "" &&
		refreshed.Status != match.StatusTimed && refreshed.Status != match.StatusScheduled {
		refreshed.Score = match.NewScore(*homeScore, *awayScore)
	}
	detail.Match = &refreshed
	if statsSeen {
		detail.Statistics = espn.FinishStatistics(stats)
	}

	homeName := firstNonEmpty(m.HomeTeam.Name, refreshed.HomeTeam.Name)
	awayName := firstNonEmpty(m.AwayTeam.Name, refreshed.AwayTeam.Name)
	events, err := c.plays(ctx, competition.Details, m.ID, sides, homeName, awayName, now)
	if err != nil {
		if err := c.degrade(ctx, "details", eventID, err); err != nil {
			return detail, err
		}
	}
	detail.Events = events

	entries, err := c.commentary(ctx, competition.Commentaries, m.ID)
	if err != nil {
		if err := c.degrade(ctx, "commentaries", eventID, err); err != nil {
			return detail, err
		}
	}
	detail.Commentary = entries
	return detail, nil
}

// degrade logs a non-fatal failure and swallows it; fatal errors are returned.
func (c *Client) degrade(ctx context.Context, part, eventID string, err error) error {
	if IsFatal(err) {
		return fmt.Errorf("core %s event=%s: %w", part, eventID, err)
	}
	c.logger.WarnContext(ctx, "core resource unavailable", "part", part, "event_id", eventID, "error", err)
	return nil
}

func (c *Client) applyStatus(ctx context.Context, raw json.RawMessage, m *match.Match) error {
	if len(raw) == 0 {
		return nil
	}
	var status coreStatus
	if err := c.resolver.ResolveInto(ctx, raw, &status); err != nil {
		return err
	}
	if status.Type != nil {
		m.Status = espn.MapStatus(status.Type.State, status.Type.Name)
	}
	if match.IsLive(m.Status) {
		m.Clock = espn.NormalizeClock(status.DisplayClock)
	}
	return nil
}

func (c *Client) team(ctx context.Context, competitor coreCompetitor) (match.TeamRef, error) {
	ref := match.TeamRef{ID: firstNonEmpty(refgraph.IDAfter(refgraph.Ref(competitor.Team), "teams"), string(competitor.ID))}
	if len(competitor.Team) == 0 {
		return ref, nil
	}
	var t coreTeam
	if err := c.teams.ResolveInto(ctx, competitor.Team, &t); err != nil {
		if IsFatal(err) {
			return ref, err
		}
		return ref, nil
	}
	if id := string(t.ID); id != "" {
		ref.ID = id
	}
	ref.Name = strings.TrimSpace(t.DisplayName)
	ref.ShortName = firstNonEmpty(t.ShortDisplayName, t.Abbreviation)
	if len(t.Logos) > 0 {
		ref.Crest = strings.TrimSpace(t.Logos[0].Href)
	}
	return ref, nil
}

func (c *Client) score(ctx context.Context, raw json.RawMessage) (*int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s coreScore
	if err := c.resolver.ResolveInto(ctx, raw, &s); err != nil {
		if IsFatal(err) {
			return nil, err
		}
		return nil, nil
	}
	if s.Value == nil {
		return nil, nil
	}
	v := int(*s.Value)
	return &v, nil
}

func (c *Client) statistics(ctx context.Context, raw json.RawMessage, side match.Side, stats *matchstats.Statistics) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	var doc coreStatistics
	if err := c.resolver.ResolveInto(ctx, raw, &doc); err != nil {
		if IsFatal(err) {
			return false, err
		}
		return false, nil
	}
	seen := false
	for _, category := range doc.Splits.Categories {
		for _, stat := range category.Stats {
			if espn.SetStat(stats, side, stat.Name, stat.Value) {
				seen = true
			}
		}
	}
	return seen, nil
}

// plays maps the details collection. A play's team is a link whose path
// carries the team id, so sides resolve without fetching it.
func (c *Client) plays(ctx context.Context, raw json.RawMessage, matchID string, sides map[string]match.Side, homeName, awayName string, now time.Time) ([]match.Event, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	items, err := c.resolver.Collection(ctx, raw)
	if err != nil {
		return nil, err
	}

	out := make([]match.Event, 0, len(items))
	for _, item := range items {
		var play corePlay
		if err := sonic.Unmarshal(item, &play); err != nil {
			continue
		}
		var typeText string
		if play.Type != nil {
			typeText = play.Type.Text
		}
		text := firstNonEmpty(play.Text, play.ShortText, typeText)
		if text == "" {
			continue
		}

		e := match.Event{
			ID:          string(play.ID),
			MatchID:     matchID,
			Kind:        eventclass.ClassifyAny(typeText, text),
			Description: textnorm.StripMarkup(text),
			Source:      match.SourceESPNCore,
			CreatedAt:   now,
		}
		if teamID := refgraph.IDAfter(refgraph.Ref(play.Team), "teams"); teamID != "" {
			e.TeamID = teamID
			e.Side = sides[teamID]
		}
		if e.Side == match.SideUnknown {
			e.Side = eventclass.AttributeSide(text, homeName, awayName)
			if e.Kind == match.KindOwnGoal {
				e.Side = e.Side.Opposite()
			}
		}
		if play.Clock != nil {
			if clock, ok := timeline.ParseClock(play.Clock.DisplayValue); ok {
				base := min(clock.Base, timeline.MaxMinute)
				e.Minute = &base
				if clock.Stoppage > 0 {
					extra := clock.Stoppage
					e.ExtraMinute = &extra
				}
				e.Clock = timeline.FormatClock(base, clock.Stoppage)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) commentary(ctx context.Context, raw json.RawMessage, matchID string) ([]commentary.RawEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	items, err := c.resolver.Collection(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := make([]commentary.RawEntry, 0, len(items))
	for _, item := range items {
		var entry coreCommentary
		if err := sonic.Unmarshal(item, &entry); err != nil || strings.TrimSpace(entry.Text) == "" {
			continue
		}
		r := commentary.RawEntry{MatchID: matchID, Text: entry.Text, Source: match.SourceESPNCore, Sequence: entry.Sequence}
		if entry.Time != nil {
			r.Time = entry.Time.DisplayValue
		}
		// Same play id the site summary uses, so both feeds key the line alike.
		r.ID = playID(entry.Play)
		out = append(out, r)
	}
	return out, nil
}

// playID reads the id of a linked or inline play without fetching it.
func playID(raw json.RawMessage) string {
	if id := refgraph.IDAfter(refgraph.Ref(raw), "plays"); id != "" {
		return id
	}
	if len(raw) == 0 {
		return ""
	}
	var inline struct {
		ID flexString `json:"id"`
	}
	if err := sonic.Unmarshal(raw, &inline); err != nil {
		return ""
	}
	return strings.TrimSpace(string(inline.ID))
}

func sideOf(homeAway string) match.Side {
	switch strings.ToLower(strings.TrimSpace(homeAway)) {
	case "home":
		return match.SideHome
	case "away":
		return match.SideAway
	default:
		return match.SideUnknown
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func parseTime(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
