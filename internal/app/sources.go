package app

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchfeed/external/espn"
	"github.com/riskibarqy/matchfeed/external/espncore"
	"github.com/riskibarqy/matchfeed/external/footballdata"
	"github.com/riskibarqy/matchfeed/external/httpfetch"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// One fetcher is shared by every adapter so pacing and the rejection latch
// apply to the process as a whole.
func newFetcher(cfg config.Config, logger *logging.Logger) *httpfetch.Fetcher {
	var secrets []string
	if cfg.FootballDataToken != "" {
		secrets = append(secrets, cfg.FootballDataToken)
	}

	return httpfetch.New(httpfetch.Config{
		Timeout:     cfg.FetchTimeout,
		MinInterval: cfg.FetchMinInterval,
		Retry: resilience.RetryPolicy{
			MaxRetries: cfg.FetchMaxRetries,
			BaseDelay:  cfg.FetchBackoffBase,
			MaxDelay:   cfg.FetchBackoffMax,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FetchCircuitEnabled,
			FailureThreshold: cfg.FetchCircuitFailureCount,
			OpenTimeout:      cfg.FetchCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FetchCircuitHalfOpenMaxReq,
		},
		Logger:    logger,
		UserAgent: cfg.ServiceName + "/" + cfg.ServiceVersion,
		Secrets:   secrets,
	})
}

// newSources picks the schedule provider and orders the detail providers.
// football-data owns the schedule when it is configured since its ids are
// stable across seasons; ESPN site fills in otherwise.
func newSources(cfg config.Config, fetcher *httpfetch.Fetcher, logger *logging.Logger) usecase.IngestionSources {
	site := espn.NewClient(fetcher, espn.Config{
		BaseURL: cfg.ESPNSiteBaseURL,
		Logger:  logger,
	})

	sources := usecase.IngestionSources{
		Schedule: site,
		Details:  []usecase.DetailProvider{site},
		News:     site,
		Disabled: fetcher.Disabled,
	}

	if cfg.ESPNCoreEnabled {
		sources.Details = append(sources.Details, espncore.NewClient(fetcher, espncore.Config{
			BaseURL: cfg.ESPNCoreBaseURL,
			Logger:  logger,
		}))
	}

	if cfg.FootballDataEnabled {
		fd := footballdata.NewClient(fetcher, footballdata.Config{
			BaseURL:        cfg.FootballDataBaseURL,
			Token:          cfg.FootballDataToken,
			DetailsEnabled: cfg.FootballDataDetailsEnabled,
			Logger:         logger,
		})
		sources.Schedule = fd
		sources.Standings = fd
		sources.Rosters = fd
		if cfg.FootballDataDetailsEnabled {
			sources.Details = append(sources.Details, fd)
		}
	}

	return sources
}

// requireScheduleSlugs rejects competitions the ESPN scoreboard cannot list
// when it is the schedule source.
func requireScheduleSlugs(cfg config.Config, competitions []usecase.Competition) error {
	if cfg.FootballDataEnabled {
		return nil
	}
	var missing []string
	for _, c := range competitions {
		if c.LeagueSlug == "" {
			missing = append(missing, c.Code)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("INGEST_COMPETITIONS entries need a league slug (CODE:slug) when FOOTBALLDATA_ENABLED=false: %s", strings.Join(missing, ","))
	}
	return nil
}
