// Package espn adapts ESPN's public site API: scoreboard, match summary
// (key events, commentary, rosters, boxscore, videos) and league news.
package espn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/soccer"
	dayLayout      = "20060102"
)

// Fetcher is the subset of httpfetch.Fetcher the adapter needs.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, header http.Header, target any) error
}

type Config struct {
	BaseURL string
	Logger  *logging.Logger
}

type Client struct {
	fetcher Fetcher
	baseURL string
	logger  *logging.Logger
	now     func() time.Time
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
		fetcher: fetcher,
		baseURL: baseURL,
		logger:  logger.Named("espn"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Name() string {
	return match.SourceESPN
}

// FetchMatches reads the scoreboard for [from, to). A competition without a
// league slug is an error, never an empty schedule, so nothing is pruned
// on its behalf.
func (c *Client) FetchMatches(ctx context.Context, comp usecase.Competition, from, to time.Time) ([]match.Match, error) {
	if comp.LeagueSlug == "" {
		return nil, fmt.Errorf("%w: competition=%s has no espn league slug", usecase.ErrInvalidInput, comp.Code)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty date range", usecase.ErrInvalidInput)
	}

	events, err := c.scoreboard(ctx, comp, from, to)
	if err != nil {
		return nil, err
	}

	now := c.now()
	out := make([]match.Match, 0, len(events))
	for _, ev := range events {
		m, ok := normalizeEvent(ev, comp, now)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// FetchMatchDetail resolves the ESPN event for m and reads its summary. An
// unresolvable match yields an empty detail, not an error.
func (c *Client) FetchMatchDetail(ctx context.Context, comp usecase.Competition, m match.Match) (usecase.MatchDetail, error) {
	detail := usecase.MatchDetail{Source: match.SourceESPN}
	if comp.LeagueSlug == "" {
		return detail, nil
	}

	eventID, err := c.ResolveEventID(ctx, comp, m)
	if err != nil {
		return detail, err
	}
	if eventID == "" {
		c.logger.InfoContext(ctx, "no espn event for match", "match_id", m.ID, "competition", comp.Code)
		return detail, nil
	}

	query := url.Values{}
	query.Set("event", eventID)
	var env summaryEnvelope
	if err := c.get(ctx, comp, "/summary", query, &env); err != nil {
		return detail, fmt.Errorf("fetch summary event=%s: %w", eventID, err)
	}

	return normalizeSummary(env, comp, m, eventID, c.now()), nil
}

func (c *Client) FetchNews(ctx context.Context, comp usecase.Competition) ([]news.Item, error) {
	if comp.LeagueSlug == "" {
		return nil, nil
	}
	var env newsEnvelope
	if err := c.get(ctx, comp, "/news", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch news competition=%s: %w", comp.Code, err)
	}
	return normalizeNews(env, comp.Code, c.now()), nil
}

func (c *Client) scoreboard(ctx context.Context, comp usecase.Competition, from, to time.Time) ([]apiEvent, error) {
	last := to.UTC().Add(-time.Nanosecond)
	dates := from.UTC().Format(dayLayout)
	if end := last.Format(dayLayout); end != dates {
		dates += "-" + end
	}
	query := url.Values{}
	query.Set("dates", dates)

	var env scoreboardEnvelope
	if err := c.get(ctx, comp, "/scoreboard", query, &env); err != nil {
		return nil, fmt.Errorf("fetch scoreboard competition=%s dates=%s: %w", comp.Code, dates, err)
	}
	return env.Events, nil
}

func (c *Client) get(ctx context.Context, comp usecase.Competition, path string, query url.Values, target any) error {
	fullURL := c.baseURL + "/" + url.PathEscape(comp.LeagueSlug) + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return c.fetcher.GetJSON(ctx, fullURL, nil, target)
}
