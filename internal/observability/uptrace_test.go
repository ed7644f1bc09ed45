package observability

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "matchfeed-ingestor",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestResourceAttributesDescribeIngestion(t *testing.T) {
	cfg := config.Config{
		StoreDriver:         config.StoreBolt,
		ESPNCoreEnabled:     true,
		FootballDataEnabled: true,
		IngestInterval:      5 * time.Minute,
		IngestWindowDays:    7,
	}

	got := map[string]string{}
	for _, kv := range resourceAttributes(cfg) {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["matchfeed.store"] != config.StoreBolt {
		t.Fatalf("store attribute = %q", got["matchfeed.store"])
	}
	if got["matchfeed.ingest_interval"] != "5m0s" {
		t.Fatalf("interval attribute = %q", got["matchfeed.ingest_interval"])
	}
	if sources := enabledSources(cfg); len(sources) != 3 || sources[0] != "espn" {
		t.Fatalf("unexpected sources %v", sources)
	}
	if sources := enabledSources(config.Config{}); len(sources) != 1 {
		t.Fatalf("site feed is always on, got %v", sources)
	}
}
