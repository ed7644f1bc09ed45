package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/matchfeed/external/httpfetch"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/document"
	"github.com/riskibarqy/matchfeed/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchfeed/internal/interfaces/scheduler"
	basecache "github.com/riskibarqy/matchfeed/internal/platform/cache"
	idgen "github.com/riskibarqy/matchfeed/internal/platform/id"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// App owns every long-lived component of the ingestor process.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	Ingestion *usecase.IngestionService
	Fetcher   *httpfetch.Fetcher

	logger     *logging.Logger
	closeStore func() error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := newFetcher(cfg, logger)
	sources := newSources(cfg, fetcher, logger)

	matches := document.NewMatchRepository(store)
	repos := usecase.IngestionRepositories{
		Matches:    matches,
		Commentary: document.NewCommentaryRepository(store),
		Lineups:    document.NewLineupRepository(store),
		Statistics: document.NewStatisticsRepository(store),
		ScoreLog:   document.NewScoreLogRepository(store),
		State:      document.NewStateRepository(store),
		Standings:  document.NewStandingRepository(store),
		Teams:      document.NewTeamRepository(store),
		News:       document.NewNewsRepository(store),
	}
	if cfg.CacheEnabled {
		repos.Matches = cache.NewMatchRepository(matches, basecache.NewStore(cfg.CacheTTL))
	}

	competitions := usecase.ParseCompetitions(cfg.IngestCompetitions)
	if len(competitions) == 0 {
		_ = closeStore()
		return nil, fmt.Errorf("no competitions configured in INGEST_COMPETITIONS")
	}
	if err := requireScheduleSlugs(cfg, competitions); err != nil {
		_ = closeStore()
		return nil, err
	}

	ingestion := usecase.NewIngestionService(repos, sources, usecase.IngestionConfig{
		Competitions:     competitions,
		WindowDays:       cfg.IngestWindowDays,
		SliceDays:        cfg.IngestSliceDays,
		Workers:          cfg.IngestCompetitionWorkers,
		SecondaryEnabled: cfg.IngestSecondaryEnabled,
		DetailLookback:   cfg.IngestDetailLookback,
	}, idgen.NewUUIDGenerator(), logger)

	sched, err := scheduler.New(ingestion, scheduler.Config{
		Enabled:    cfg.IngestEnabled,
		Interval:   cfg.IngestInterval,
		RunOnStart: cfg.IngestRunOnStart,
		Logger:     logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	fetcher.OnLatched(sched.Halt)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = promhttp.Handler()
	}
	handler := httpapi.NewHandler(ingestion, fetcher, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken, metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		_ = closeStore()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	logger.Info("app wired",
		"store", cfg.StoreDriver,
		"cache_enabled", cfg.CacheEnabled,
		"competitions", len(competitions),
		"detail_sources", len(sources.Details),
		"ingest_enabled", cfg.IngestEnabled,
	)

	return &App{
		Server:     server,
		Scheduler:  sched,
		Ingestion:  ingestion,
		Fetcher:    fetcher,
		logger:     logger,
		closeStore: closeStore,
	}, nil
}

// Start launches the scheduler and the HTTP listener. Listener failures other
// than a clean shutdown are sent on the returned channel.
func (a *App) Start() <-chan error {
	errs := make(chan error, 1)
	a.Scheduler.Start()

	go func() {
		a.logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	return errs
}

// Shutdown stops the timer, waits for an in-flight cycle, then drains HTTP
// and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	select {
	case <-a.Scheduler.Stop(ctx).Done():
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("wait for ingestion cycle: %w", ctx.Err()))
	}

	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.closeStore(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

const defaultShutdownTimeout = 30 * time.Second

// ShutdownTimeout leaves room for one fetch to finish its backoff.
func ShutdownTimeout(cfg config.Config) time.Duration {
	if d := cfg.FetchTimeout + cfg.FetchBackoffMax; d > defaultShutdownTimeout {
		return d
	}
	return defaultShutdownTimeout
}
