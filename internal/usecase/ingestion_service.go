package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
	"github.com/riskibarqy/matchfeed/internal/domain/leaguestanding"
	"github.com/riskibarqy/matchfeed/internal/domain/lineup"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/matchstats"
	"github.com/riskibarqy/matchfeed/internal/domain/news"
	"github.com/riskibarqy/matchfeed/internal/domain/scorelog"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/platform/id"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/metrics"
)

type IngestionRepositories struct {
	Matches    match.Repository
	Commentary commentary.Repository
	Lineups    lineup.Repository
	Statistics matchstats.Repository
	ScoreLog   scorelog.Repository
	State      ingeststate.Repository
	Standings  leaguestanding.Repository
	Teams      team.Repository
	News       news.Repository
}

// IngestionSources are the provider adapters. Schedule is required; Details
// are asked in order and the first complete lineup or statistics sheet wins.
type IngestionSources struct {
	Schedule  MatchProvider
	Details   []DetailProvider
	Standings StandingsProvider
	Rosters   RosterProvider
	News      NewsProvider
	// Disabled reports the fetch layer's permanent rejection latch.
	Disabled func() bool
}

type IngestionConfig struct {
	Competitions []Competition
	// WindowDays is the length of the forward window starting today 00:00 UTC.
	WindowDays int
	// SliceDays bounds the date range of one schedule request.
	SliceDays int
	// Workers > 1 runs competitions concurrently.
	Workers          int
	SecondaryEnabled bool
	// DetailLookback keeps fetching details of a finished match until this
	// long after kickoff, or until one detail fetch after full time succeeded.
	DetailLookback time.Duration
}

// FetchState is the in-process scheduler state.
type FetchState struct {
	Running     bool       `json:"running"`
	APIDisabled bool       `json:"apiDisabled"`
	LastFetch   *time.Time `json:"lastFetch,omitempty"`
	LastRunID   string     `json:"lastRunId,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

type CycleInput struct {
	// Competitions restricts the cycle to these codes; empty means all.
	Competitions []string
	// Force refetches details of finished matches already marked final.
	Force bool
}

type CompetitionResult struct {
	Competition  string `json:"competition"`
	Matches      int    `json:"matches"`
	Details      int    `json:"details"`
	Pruned       int    `json:"pruned"`
	DerivedGoals int    `json:"derivedGoals"`
	Error        string `json:"error,omitempty"`
}

type CycleResult struct {
	RunID        string              `json:"runId"`
	Status       string              `json:"status"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
	Competitions []CompetitionResult `json:"competitions"`
}

const (
	cycleStatusOK      = "ok"
	cycleStatusPartial = "partial"
	cycleStatusError   = "error"
)

type IngestionService struct {
	repos   IngestionRepositories
	sources IngestionSources
	cfg     IngestionConfig
	ids     id.Generator
	logger  *logging.Logger
	now     func() time.Time

	mu    sync.Mutex
	state FetchState
}

func NewIngestionService(
	repos IngestionRepositories,
	sources IngestionSources,
	cfg IngestionConfig,
	ids id.Generator,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if cfg.SliceDays <= 0 {
		cfg.SliceDays = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DetailLookback <= 0 {
		cfg.DetailLookback = 4 * time.Hour
	}
	if sources.Disabled == nil {
		sources.Disabled = func() bool { return false }
	}

	return &IngestionService{
		repos:   repos,
		sources: sources,
		cfg:     cfg,
		ids:     ids,
		logger:  logger.Named("ingestion"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// State returns a copy of the in-process fetch state.
func (s *IngestionService) State() FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if s.state.LastFetch != nil {
		t := *s.state.LastFetch
		out.LastFetch = &t
	}
	out.APIDisabled = out.APIDisabled || s.sources.Disabled()
	return out
}

// DisplayState reads the persisted display-state document.
func (s *IngestionService) DisplayState(ctx context.Context) (ingeststate.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.DisplayState")
	defer span.End()

	state, ok, err := s.repos.State.Get(ctx)
	if err != nil {
		return ingeststate.State{}, fmt.Errorf("get ingestion state: %w", err)
	}
	if !ok {
		return ingeststate.State{Status: ingeststate.StatusIdle}, nil
	}
	return state, nil
}

// MarkDisabled records that an upstream rejected the client for good.
func (s *IngestionService) MarkDisabled(ctx context.Context, reason error) {
	s.mu.Lock()
	s.state.APIDisabled = true
	if reason != nil {
		s.state.LastError = reason.Error()
	}
	s.mu.Unlock()

	message := "fetching disabled until restart"
	if reason != nil {
		message += ": " + reason.Error()
	}
	s.saveState(ctx, ingeststate.StatusDisabled, message, "")
}

// MarkStopped records that the periodic timer was halted.
func (s *IngestionService) MarkStopped(ctx context.Context) {
	s.saveState(ctx, ingeststate.StatusStopped, "scheduler stopped", "")
}

// RunCycle runs one ingestion cycle. A cycle requested while another is
// running is dropped with ErrCycleInProgress.
func (s *IngestionService) RunCycle(ctx context.Context, input CycleInput) (result CycleResult, err error) {
	ctx, span := startCycleSpan(ctx, input)
	defer func() { endCycleSpan(span, result, err) }()

	competitions, err := s.pickCompetitions(input.Competitions)
	if err != nil {
		return CycleResult{}, err
	}
	if !s.begin() {
		s.logger.WarnContext(ctx, "ingestion cycle skipped: previous cycle still fetching")
		metrics.CycleRunsTotal.WithLabelValues("skipped").Inc()
		return CycleResult{}, ErrCycleInProgress
	}

	result = CycleResult{StartedAt: s.now(), Status: cycleStatusOK}
	defer func() { s.finish(result) }()

	if s.sources.Disabled() {
		result.Status = cycleStatusError
		s.saveState(ctx, ingeststate.StatusDisabled, "fetching disabled until restart", "")
		return result, fmt.Errorf("%w: fetching disabled until restart", ErrUpstreamRejected)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return result, fmt.Errorf("generate run id: %w", err)
	}
	result.RunID = runID
	s.saveState(ctx, ingeststate.StatusFetching, fmt.Sprintf("fetching %d competitions", len(competitions)), runID)

	from := startOfDay(result.StartedAt)
	to := from.AddDate(0, 0, s.cfg.WindowDays)
	result.Competitions = s.runCompetitions(ctx, competitions, from, to, input.Force)
	result.FinishedAt = s.now()

	failed := 0
	for _, c := range result.Competitions {
		if c.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		result.Status = cycleStatusOK
	case failed == len(result.Competitions):
		result.Status = cycleStatusError
	default:
		result.Status = cycleStatusPartial
	}

	metrics.CycleRunsTotal.WithLabelValues(result.Status).Inc()
	metrics.CycleDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	switch {
	case s.sources.Disabled():
		s.saveState(ctx, ingeststate.StatusDisabled, "fetching disabled until restart", runID)
	case result.Status == cycleStatusError:
		s.saveState(ctx, ingeststate.StatusError, fmt.Sprintf("all %d competitions failed", failed), runID)
	default:
		s.saveState(ctx, ingeststate.StatusIdle, summarize(result), runID)
	}
	s.logger.InfoContext(ctx, "ingestion cycle finished",
		"run_id", runID,
		"status", result.Status,
		"competitions", len(result.Competitions),
		"failed", failed,
		"duration", result.FinishedAt.Sub(result.StartedAt).String(),
	)
	return result, nil
}

func (s *IngestionService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Running {
		return false
	}
	s.state.Running = true
	return true
}

func (s *IngestionService) finish(result CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = false
	if result.RunID == "" {
		return
	}
	finished := result.FinishedAt
	if finished.IsZero() {
		finished = s.now()
	}
	s.state.LastFetch = &finished
	s.state.LastRunID = result.RunID
	s.state.LastError = ""
	for _, c := range result.Competitions {
		if c.Error != "" {
			s.state.LastError = c.Competition + ": " + c.Error
			break
		}
	}
}

func (s *IngestionService) pickCompetitions(codes []string) ([]Competition, error) {
	if len(codes) == 0 {
		return s.cfg.Competitions, nil
	}
	out := make([]Competition, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		idx := slices.IndexFunc(s.cfg.Competitions, func(c Competition) bool { return c.Code == code })
		if idx < 0 {
			return nil, fmt.Errorf("%w: competition %q is not configured", ErrInvalidInput, code)
		}
		out = append(out, s.cfg.Competitions[idx])
	}
	return out, nil
}

func (s *IngestionService) runCompetitions(ctx context.Context, competitions []Competition, from, to time.Time, force bool) []CompetitionResult {
	results := make([]CompetitionResult, len(competitions))
	run := func(i int) {
		withCompetitionProfile(ctx, competitions[i].Code, func(ctx context.Context) {
			results[i] = s.runCompetition(ctx, competitions[i], from, to, force)
		})
	}

	if s.cfg.Workers <= 1 || len(competitions) <= 1 {
		for i := range competitions {
			run(i)
		}
		return results
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(competitions)))
	if err != nil {
		s.logger.WarnContext(ctx, "create worker pool failed, running sequentially", "error", err)
		for i := range competitions {
			run(i)
		}
		return results
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i := range competitions {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			run(i)
		}); err != nil {
			workers.Done()
			results[i] = CompetitionResult{Competition: competitions[i].Code, Error: fmt.Sprintf("submit to worker pool: %v", err)}
		}
	}
	workers.Wait()
	return results
}

func (s *IngestionService) runCompetition(ctx context.Context, comp Competition, from, to time.Time, force bool) CompetitionResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.runCompetition",
		attribute.String("matchfeed.competition", comp.Code),
	)
	defer span.End()

	result := CompetitionResult{Competition: comp.Code}
	if err := s.syncCompetition(ctx, comp, from, to, force, &result); err != nil {
		failSpan(span, err)
		result.Error = err.Error()
		s.logger.ErrorContext(ctx, "competition ingestion failed", "competition", comp.Code, "error", err)
	}
	if s.cfg.SecondaryEnabled && !s.sources.Disabled() && ctx.Err() == nil {
		s.syncSecondary(ctx, comp)
	}
	return result
}

func (s *IngestionService) syncCompetition(ctx context.Context, comp Competition, from, to time.Time, force bool, result *CompetitionResult) error {
	fetched, complete, err := s.fetchWindow(ctx, comp, from, to)
	if err != nil {
		return err
	}

	stored, err := s.repos.Matches.ListByCompetition(ctx, comp.Code, from, to)
	if err != nil {
		return fmt.Errorf("list stored matches competition=%s: %w", comp.Code, err)
	}
	previous := make(map[string]match.Match, len(stored))
	for _, m := range stored {
		previous[m.ID] = m
	}

	now := s.now()
	merged := make([]match.Match, 0, len(fetched))
	audit := make([]scorelog.Entry, 0)
	for _, incoming := range fetched {
		prev, ok := previous[incoming.ID]
		if !ok {
			// Rescheduled matches may sit outside the stored window.
			if found, exists, err := s.repos.Matches.GetByID(ctx, incoming.ID); err == nil && exists {
				prev, ok = found, true
			}
		}
		var prevPtr *match.Match
		if ok {
			prevPtr = &prev
		}

		m := MergeMatch(prevPtr, incoming, now)
		m.CompetitionID = comp.Code
		if s.wantsDetail(m, now, force) && !s.sources.Disabled() {
			if s.applyDetails(ctx, comp, &m, now) {
				result.Details++
			}
		}

		entries, derived := reconcileGoals(prevPtr, &m, now)
		result.DerivedGoals += derived
		audit = append(audit, entries...)
		merged = append(merged, m)
	}

	if len(merged) > 0 {
		if err := s.repos.Matches.UpsertMany(ctx, merged); err != nil {
			return fmt.Errorf("upsert matches competition=%s: %w", comp.Code, err)
		}
		metrics.MatchesUpsertedTotal.WithLabelValues(comp.Code).Add(float64(len(merged)))
	}
	result.Matches = len(merged)
	if result.DerivedGoals > 0 {
		metrics.DerivedGoalsTotal.WithLabelValues(comp.Code).Add(float64(result.DerivedGoals))
	}
	if len(audit) > 0 {
		if err := s.repos.ScoreLog.Append(ctx, audit); err != nil {
			s.logger.WarnContext(ctx, "append score log failed", "competition", comp.Code, "entries", len(audit), "error", err)
		}
	}

	pruned, err := s.prune(ctx, comp, from, to, merged, complete)
	result.Pruned = pruned
	if err != nil {
		return err
	}
	if !complete {
		return fmt.Errorf("%w: schedule incomplete for competition=%s", ErrDependencyUnavailable, comp.Code)
	}
	return nil
}

// fetchWindow reads the schedule in slices. A failed slice is logged and
// reported through complete=false; only fatal errors abort.
func (s *IngestionService) fetchWindow(ctx context.Context, comp Competition, from, to time.Time) ([]match.Match, bool, error) {
	if s.sources.Schedule == nil {
		return nil, false, fmt.Errorf("%w: no schedule provider configured", ErrDependencyUnavailable)
	}

	complete := true
	seen := make(map[string]int)
	out := make([]match.Match, 0)
	for start := from; start.Before(to); start = start.AddDate(0, 0, s.cfg.SliceDays) {
		end := start.AddDate(0, 0, s.cfg.SliceDays)
		if end.After(to) {
			end = to
		}
		matches, err := s.sources.Schedule.FetchMatches(ctx, comp, start, end)
		if err != nil {
			if isFatal(ctx, err) {
				return nil, false, fmt.Errorf("fetch schedule competition=%s: %w", comp.Code, err)
			}
			complete = false
			s.logger.WarnContext(ctx, "schedule slice failed",
				"competition", comp.Code,
				"provider", s.sources.Schedule.Name(),
				"from", start.Format(time.DateOnly),
				"to", end.Format(time.DateOnly),
				"error", err,
			)
			continue
		}
		for _, m := range matches {
			if strings.TrimSpace(m.ID) == "" {
				continue
			}
			if i, ok := seen[m.ID]; ok {
				out[i] = m
				continue
			}
			seen[m.ID] = len(out)
			out = append(out, m)
		}
	}
	return out, complete, nil
}

// prune deletes non-curated matches dated before the window, and, when the
// whole window was fetched, non-curated matches inside it that the fetch no
// longer returned.
func (s *IngestionService) prune(ctx context.Context, comp Competition, from, to time.Time, fetched []match.Match, complete bool) (int, error) {
	stale, err := s.repos.Matches.Prune(ctx, match.PruneFilter{CompetitionID: comp.Code, Before: &from})
	if err != nil {
		return 0, fmt.Errorf("prune stale matches competition=%s: %w", comp.Code, err)
	}
	metrics.MatchesPrunedTotal.WithLabelValues(comp.Code, "stale").Add(float64(stale))
	if !complete {
		return stale, nil
	}

	keep := make([]string, 0, len(fetched))
	for _, m := range fetched {
		keep = append(keep, m.ID)
	}
	missing, err := s.repos.Matches.Prune(ctx, match.PruneFilter{CompetitionID: comp.Code, From: &from, To: &to, KeepIDs: keep})
	if err != nil {
		return stale, fmt.Errorf("prune missing matches competition=%s: %w", comp.Code, err)
	}
	metrics.MatchesPrunedTotal.WithLabelValues(comp.Code, "missing").Add(float64(missing))
	if stale+missing > 0 {
		s.logger.InfoContext(ctx, "pruned matches", "competition", comp.Code, "stale", stale, "missing", missing)
	}
	return stale + missing, nil
}

func (s *IngestionService) wantsDetail(m match.Match, now time.Time, force bool) bool {
	if len(s.sources.Details) == 0 {
		return false
	}
	switch {
	case match.IsLive(m.Status):
		return true
	case match.IsFinished(m.Status):
		if force {
			return true
		}
		return !m.DetailsFinal && now.Sub(m.KickoffAt) <= s.cfg.DetailLookback
	default:
		return false
	}
}

// applyDetails asks every detail provider about m, one at a time, and stores
// what they return. Each provider call is isolated: a failure is logged and
// the next provider is tried. It reports whether any provider answered.
func (s *IngestionService) applyDetails(ctx context.Context, comp Competition, m *match.Match, now time.Time) bool {
	details := make([]MatchDetail, 0, len(s.sources.Details))
	for _, provider := range s.sources.Details {
		if s.sources.Disabled() || ctx.Err() != nil {
			break
		}
		var detail MatchDetail
		ok := s.isolate(ctx, "detail:"+provider.Name(), comp, func(ctx context.Context) error {
			var err error
			detail, err = provider.FetchMatchDetail(ctx, comp, *m)
			return err
		})
		if !ok || detail.Empty() {
			continue
		}
		if detail.Match != nil {
			refreshed := *detail.Match
			refreshed.ID = m.ID
			*m = MergeMatch(m, refreshed, now)
		}
		if len(detail.Events) > 0 {
			events := make([]match.Event, 0, len(detail.Events))
			for _, e := range detail.Events {
				e.MatchID = m.ID
				events = append(events, e)
			}
			m.Events = MergeEvents(m.Events, events)
			m.ExplicitFeed = true
		}
		details = append(details, detail)
	}
	if len(details) == 0 {
		return false
	}
	if match.IsFinished(m.Status) {
		m.DetailsFinal = true
	}

	s.isolate(ctx, "detail:store", comp, func(ctx context.Context) error {
		return s.storeDetails(ctx, m.ID, details)
	})
	return true
}

func (s *IngestionService) storeDetails(ctx context.Context, matchID string, details []MatchDetail) error {
	var errs []error

	var raw []commentary.RawEntry
	lineupCandidates := make([][]lineup.Lineup, 0, len(details)+1)
	statCandidates := make([]*matchstats.Statistics, 0, len(details)+1)
	var highlights []news.Item
	for _, d := range details {
		for _, r := range d.Commentary {
			r.MatchID = matchID
			raw = append(raw, r)
		}
		if len(d.Lineups) > 0 {
			lineupCandidates = append(lineupCandidates, withMatchID(d.Lineups, matchID))
		}
		if d.Statistics != nil {
			stats := *d.Statistics
			stats.MatchID = matchID
			statCandidates = append(statCandidates, &stats)
		}
		highlights = append(highlights, d.Highlights...)
	}

	if len(raw) > 0 {
		stored, err := s.repos.Commentary.ListByMatch(ctx, matchID)
		if err != nil {
			errs = append(errs, fmt.Errorf("list commentary: %w", err))
		} else if err := s.repos.Commentary.Replace(ctx, matchID, MergeCommentary(stored, commentary.Order(raw))); err != nil {
			errs = append(errs, fmt.Errorf("replace commentary: %w", err))
		}
	}

	if len(lineupCandidates) > 0 {
		stored, err := s.repos.Lineups.ListByMatch(ctx, matchID)
		if err != nil {
			errs = append(errs, fmt.Errorf("list lineups: %w", err))
		} else if err := s.repos.Lineups.UpsertMany(ctx, PickLineups(append(lineupCandidates, stored)...)); err != nil {
			errs = append(errs, fmt.Errorf("upsert lineups: %w", err))
		}
	}

	if len(statCandidates) > 0 {
		stored, ok, err := s.repos.Statistics.Get(ctx, matchID)
		if err != nil {
			errs = append(errs, fmt.Errorf("get statistics: %w", err))
		} else {
			if ok {
				statCandidates = append(statCandidates, &stored)
			}
			if picked := PickStatistics(statCandidates...); picked != nil {
				if err := s.repos.Statistics.Upsert(ctx, *picked); err != nil {
					errs = append(errs, fmt.Errorf("upsert statistics: %w", err))
				}
			}
		}
	}

	if len(highlights) > 0 && s.repos.News != nil {
		if err := s.repos.News.UpsertMany(ctx, highlights); err != nil {
			errs = append(errs, fmt.Errorf("upsert highlights: %w", err))
		}
	}
	return errors.Join(errs...)
}

func withMatchID(lineups []lineup.Lineup, matchID string) []lineup.Lineup {
	out := make([]lineup.Lineup, 0, len(lineups))
	for _, l := range lineups {
		l.MatchID = matchID
		out = append(out, l)
	}
	return out
}

// syncSecondary runs the best-effort fetches. None of them can fail the cycle.
func (s *IngestionService) syncSecondary(ctx context.Context, comp Competition) {
	if s.sources.Standings != nil && s.repos.Standings != nil {
		s.isolate(ctx, "standings", comp, func(ctx context.Context) error {
			rows, err := s.sources.Standings.FetchStandings(ctx, comp)
			if err != nil {
				return err
			}
			return s.repos.Standings.ReplaceByCompetition(ctx, comp.Code, rows)
		})
	}
	if s.sources.Rosters != nil && s.repos.Teams != nil {
		s.isolate(ctx, "rosters", comp, func(ctx context.Context) error {
			teams, err := s.sources.Rosters.FetchTeams(ctx, comp)
			if err != nil {
				return err
			}
			return s.repos.Teams.UpsertMany(ctx, teams)
		})
	}
	if s.sources.News != nil && s.repos.News != nil {
		s.isolate(ctx, "news", comp, func(ctx context.Context) error {
			items, err := s.sources.News.FetchNews(ctx, comp)
			if err != nil {
				return err
			}
			return s.repos.News.UpsertMany(ctx, items)
		})
	}
}

// isolate runs fn inside its own failure boundary: errors and panics are
// logged and counted, never propagated. It reports whether fn succeeded.
func (s *IngestionService) isolate(ctx context.Context, kind string, comp Competition, fn func(context.Context) error) bool {
	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = fn(ctx) })
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}
	if err == nil {
		return true
	}
	metrics.SecondaryFailuresTotal.WithLabelValues(kind).Inc()
	s.logger.WarnContext(ctx, "best-effort fetch failed", "kind", kind, "competition", comp.Code, "error", err)
	return false
}

func (s *IngestionService) saveState(ctx context.Context, status, message, runID string) {
	if s.repos.State == nil {
		return
	}
	state := ingeststate.State{Status: status, Message: message, RunID: runID, UpdatedAt: s.now()}
	if prev := s.State().LastFetch; prev != nil {
		state.LastFetch = prev
	}
	if status == ingeststate.StatusIdle || status == ingeststate.StatusError {
		now := s.now()
		state.LastFetch = &now
	}
	if err := s.repos.State.Save(ctx, state); err != nil {
		s.logger.WarnContext(ctx, "save display state failed", "status", status, "error", err)
	}
}

func summarize(result CycleResult) string {
	matches, derived, pruned := 0, 0, 0
	for _, c := range result.Competitions {
		matches += c.Matches
		derived += c.DerivedGoals
		pruned += c.Pruned
	}
	msg := fmt.Sprintf("%d matches updated, %d pruned, %d goals derived", matches, pruned, derived)
	if result.Status == cycleStatusPartial {
		msg += " (partial)"
	}
	return msg
}

func isFatal(ctx context.Context, err error) bool {
	return errors.Is(err, ErrUpstreamRejected) || ctx.Err() != nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
