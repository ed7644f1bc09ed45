// Package metrics exposes Prometheus collectors for the ingestion pipeline.
//
// Collectors register on the default registry; the HTTP surface serves them
// through promhttp.Handler().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchfeed"

var (
	// FetchRequestsTotal counts upstream fetch attempts by host and outcome
	// (ok, rate_limited, forbidden, error, disabled).
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Upstream fetch attempts by host and outcome",
		},
		[]string{"host", "outcome"},
	)

	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Backoff retries after rate limiting",
		},
		[]string{"host"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Upstream request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"host"},
	)

	// FetcherDisabled is 1 once a permanent rejection has disabled fetching.
	FetcherDisabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetcher_disabled",
			Help:      "Set to 1 after an upstream rejected the client permanently",
		},
	)

	CycleRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_cycles_total",
			Help:      "Ingestion cycles by result (ok, partial, error, skipped)",
		},
		[]string{"result"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_cycle_duration_seconds",
			Help:      "Wall time of one ingestion cycle",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	MatchesUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_upserted_total",
			Help:      "Match records written per competition",
		},
		[]string{"competition"},
	)

	DerivedGoalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derived_goals_total",
			Help:      "Goal events synthesized from score deltas",
		},
		[]string{"competition"},
	)

	MatchesPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_pruned_total",
			Help:      "Match records removed by window pruning",
		},
		[]string{"competition", "reason"},
	)

	SecondaryFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_fetch_failures_total",
			Help:      "Best-effort fetches that failed without failing the cycle",
		},
		[]string{"kind"},
	)
)

func ObserveFetch(host, outcome string, elapsed time.Duration) {
	FetchRequestsTotal.WithLabelValues(host, outcome).Inc()
	if elapsed > 0 {
		FetchDuration.WithLabelValues(host).Observe(elapsed.Seconds())
	}
}
