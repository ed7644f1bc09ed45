package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/external/espn"
	"github.com/riskibarqy/matchfeed/external/footballdata"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:                     config.EnvDev,
		ServiceName:                "matchfeed-test",
		ServiceVersion:             "dev",
		HTTPAddr:                   "127.0.0.1:0",
		ReadTimeout:                time.Second,
		WriteTimeout:               time.Second,
		StoreDriver:                config.StoreMemory,
		CacheEnabled:               true,
		CacheTTL:                   time.Second,
		ESPNCoreEnabled:            true,
		FetchTimeout:               time.Second,
		FetchMinInterval:           time.Millisecond,
		FetchMaxRetries:            1,
		FetchBackoffBase:           time.Millisecond,
		FetchBackoffMax:            time.Millisecond,
		FetchCircuitFailureCount:   5,
		FetchCircuitOpenTimeout:    time.Second,
		FetchCircuitHalfOpenMaxReq: 1,
		IngestInterval:             time.Minute,
		IngestCompetitions:         "PL:eng.1",
		IngestWindowDays:           7,
		IngestSliceDays:            3,
		IngestCompetitionWorkers:   1,
		IngestDetailLookback:       time.Hour,
		MetricsEnabled:             true,
	}
}

func TestNewWiresMemoryStore(t *testing.T) {
	a, err := New(testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})

	for _, path := range []string{"/healthz", "/metrics", "/v1/ingestion/state"} {
		rec := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: got status %d, want 200", path, rec.Code)
		}
	}
}

func TestNewRejectsEmptyCompetitions(t *testing.T) {
	cfg := testConfig()
	cfg.IngestCompetitions = " , "
	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error without competitions")
	}
}

func TestNewRejectsCompetitionWithoutSlugOnESPNSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.IngestCompetitions = "PL:eng.1,CL"
	if _, err := New(cfg, logging.NewNop()); err == nil || !strings.Contains(err.Error(), "CL") {
		t.Fatalf("expected slug error naming CL, got %v", err)
	}

	cfg.FootballDataEnabled = true
	cfg.FootballDataToken = "token"
	if err := requireScheduleSlugs(cfg, usecase.ParseCompetitions(cfg.IngestCompetitions)); err != nil {
		t.Fatalf("football-data schedules by code, got %v", err)
	}
}

func TestNewSourcesPrefersFootballDataSchedule(t *testing.T) {
	cfg := testConfig()
	fetcher := newFetcher(cfg, logging.NewNop())

	sources := newSources(cfg, fetcher, logging.NewNop())
	if _, ok := sources.Schedule.(*espn.Client); !ok {
		t.Fatalf("expected espn schedule without football-data, got %T", sources.Schedule)
	}
	if len(sources.Details) != 2 {
		t.Fatalf("got %d detail sources, want 2", len(sources.Details))
	}
	if sources.Standings != nil {
		t.Fatalf("expected no standings source without football-data")
	}

	cfg.FootballDataEnabled = true
	cfg.FootballDataToken = "token"
	cfg.FootballDataDetailsEnabled = true
	sources = newSources(cfg, fetcher, logging.NewNop())
	if _, ok := sources.Schedule.(*footballdata.Client); !ok {
		t.Fatalf("expected football-data schedule, got %T", sources.Schedule)
	}
	if len(sources.Details) != 3 {
		t.Fatalf("got %d detail sources, want 3", len(sources.Details))
	}
	if sources.Disabled() {
		t.Fatalf("fresh fetcher must not be disabled")
	}
}
