// Package footballdata adapts the football-data.org v4 API: competition
// schedules, match detail, standings and rosters.
package footballdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	defaultBaseURL = "https://api.football-data.org/v4"
	authHeader     = "X-Auth-Token"
	dateLayout     = "2006-01-02"
)

// Fetcher is the subset of httpfetch.Fetcher the adapter needs.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, header http.Header, target any) error
}

type Config struct {
	BaseURL string
	Token   string
	// DetailsEnabled turns on one /matches/{id} call per live or just
	// finished match; it is the quota-hungry part of the adapter.
	DetailsEnabled bool
	Logger         *logging.Logger
}

type Client struct {
	fetcher        Fetcher
	baseURL        string
	token          string
	detailsEnabled bool
	logger         *logging.Logger
	now            func() time.Time
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
	return &Client{
		fetcher:        fetcher,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		detailsEnabled: cfg.DetailsEnabled,
		logger:         logger.Named("footballdata"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Name() string {
	return match.SourceFootballData
}

// FetchMatches lists the competition schedule for [from, to). The API's
// dateTo is inclusive, so the request ends the day before to.
func (c *Client) FetchMatches(ctx context.Context, comp usecase.Competition, from, to time.Time) ([]match.Match, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty date range", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("dateFrom", from.UTC().Format(dateLayout))
	query.Set("dateTo", to.UTC().Add(-time.Nanosecond).Format(dateLayout))

	var env matchesEnvelope
	if err := c.get(ctx, "/competitions/"+url.PathEscape(comp.Code)+"/matches", query, &env); err != nil {
		return nil, fmt.Errorf("fetch matches competition=%s: %w", comp.Code, err)
	}

	now := c.now()
	out := make([]match.Match, 0, len(env.Matches))
	for _, raw := range env.Matches {
		m, ok := normalizeMatch(raw, comp, now)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// FetchMatchDetail returns goals, bookings, substitutions, lineups and team
// statistics when the plan exposes them.
func (c *Client) FetchMatchDetail(ctx context.Context, comp usecase.Competition, m match.Match) (usecase.MatchDetail, error) {
	detail := usecase.MatchDetail{Source: match.SourceFootballData}
	if !c.detailsEnabled {
		return detail, nil
	}
	id := m.ExternalID(match.SourceFootballData)
	if id == "" && m.Source == match.SourceFootballData {
		id = m.ID
	}
	if id == "" {
		return detail, nil
	}

	var raw apiMatch
	if err := c.get(ctx, "/matches/"+url.PathEscape(id), nil, &raw); err != nil {
		return detail, fmt.Errorf("fetch match detail id=%s: %w", id, err)
	}

	now := c.now()
	refreshed, ok := normalizeMatch(raw, comp, now)
	if ok {
		refreshed.ID = m.ID
		detail.Match = &refreshed
	}
	sides := teamSides(raw)
	detail.Events = normalizeEvents(raw, sides, m.ID, now)
	detail.Lineups = normalizeLineups(raw, m.ID, now)
	detail.Statistics = normalizeStatistics(raw, m.ID, now)
	return detail, nil
}

func (c *Client) FetchStandings(ctx context.Context, comp usecase.Competition) ([]leaguestanding.Standing, error) {
	var env standingsEnvelope
	if err := c.get(ctx, "/competitions/"+url.PathEscape(comp.Code)+"/standings", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch standings competition=%s: %w", comp.Code, err)
	}
	return normalizeStandings(env, comp.Code, c.now()), nil
}

func (c *Client) FetchTeams(ctx context.Context, comp usecase.Competition) ([]team.Team, error) {
	var env teamsEnvelope
	if err := c.get(ctx, "/competitions/"+url.PathEscape(comp.Code)+"/teams", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch teams competition=%s: %w", comp.Code, err)
	}
	return normalizeTeams(env, comp.Code, c.now()), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	header := http.Header{}
	if c.token != "" {
		header.Set(authHeader, c.token)
	}
	return c.fetcher.GetJSON(ctx, fullURL, header, target)
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
