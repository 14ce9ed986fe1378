package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reefcast"

// Metrics holds the Prometheus counters, histograms, and gauges for ranking and digests.
type Metrics struct {
	RankRuns        prometheus.Counter
	SitesScored     prometheus.Counter
	ScoringFailures prometheus.Counter
	DiveableSites   prometheus.Gauge

	// Upstream data sources.
	SourceErrors *prometheus.CounterVec // labels: source={buoy,pacioos,nws,tides,usgs,alerts,cwb}
	CacheLookups *prometheus.CounterVec // labels: source, result={hit,miss}

	// Digest generation.
	DigestDuration   prometheus.Histogram
	DigestsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RankRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_runs_total",
			Help:      "Total ranking passes started.",
		}),
		SitesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sites_scored_total",
			Help:      "Total dive sites scored.",
		}),
		ScoringFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_failures_total",
			Help:      "Sites dropped from a ranking because scoring failed.",
		}),
		DiveableSites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diveable_sites",
			Help:      "Diveable sites in the most recent digest.",
		}),
		SourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Upstream data source failures by source.",
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by source and result.",
		}, []string{"source", "result"}),
		DigestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "digest_duration_seconds",
			Help:      "Duration of a complete digest generation.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		DigestsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digests_published_total",
			Help:      "Digest reports written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed digest publish attempts.",
		}),
	}

	prometheus.MustRegister(
		m.RankRuns,
		m.SitesScored,
		m.ScoringFailures,
		m.DiveableSites,
		m.SourceErrors,
		m.CacheLookups,
		m.DigestDuration,
		m.DigestsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RankRuns:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rank_runs_total"}),
		SitesScored:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "sites_scored_total"}),
		ScoringFailures:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "scoring_failures_total"}),
		DiveableSites:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "diveable_sites"}),
		SourceErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "source_errors_total"}, []string{"source"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total"}, []string{"source", "result"}),
		DigestDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "digest_duration_seconds"}),
		DigestsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "digests_published_total"}),
		PublishErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
	}
}
