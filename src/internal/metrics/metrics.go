// Package metrics exposes Prometheus metrics for fetches, regenerations and lookups.
package metrics

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "botiplist"

// Fetch and endpoint outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeHTTP      = "http_error"
	OutcomeParse     = "parse_error"
	OutcomeEmpty     = "empty"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var (
	registry *prometheus.Registry

	fetchTotal          *prometheus.CounterVec
	fetchDuration       *prometheus.HistogramVec
	endpointResultTotal *prometheus.CounterVec
	endpointPrefixes    *prometheus.GaugeVec
	regenerationsTotal  *prometheus.CounterVec
	artifactLines       prometheus.Gauge
	lastRefreshGauge    prometheus.Gauge
	lookupsTotal        *prometheus.CounterVec

	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		registry = prometheus.NewRegistry()
		if !testing.Testing() {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "HTTP requests issued to endpoint feeds, by host and outcome.",
		}, []string{"host", "outcome"})

		fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of endpoint feed requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"})

		endpointResultTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "results_total",
			Help:      "Per-endpoint parse outcomes during regeneration.",
		}, []string{"endpoint", "outcome"})

		endpointPrefixes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "prefixes",
			Help:      "Prefixes extracted from each endpoint in the last regeneration.",
		}, []string{"endpoint", "family"})

		regenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "regenerations_total",
			Help:      "Artifact regeneration attempts by outcome.",
		}, []string{"outcome"})

		artifactLines = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "lines",
			Help:      "Number of lines in the current artifact.",
		})

		lastRefreshGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "last_write_timestamp",
			Help:      "Unix timestamp of the last successful artifact write.",
		})

		lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "allowlist",
			Name:      "lookups_total",
			Help:      "Allow-list lookups by result.",
		}, []string{"result"})

		registry.MustRegister(fetchTotal, fetchDuration, endpointResultTotal, endpointPrefixes,
			regenerationsTotal, artifactLines, lastRefreshGauge, lookupsTotal)
	})
}

// Handler serves the metrics registry in the Prometheus exposition format.
func Handler() http.Handler {
	initMetrics()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Gatherer exposes the registry to tests.
func Gatherer() prometheus.Gatherer {
	initMetrics()
	return registry
}

func ObserveFetch(host, outcome string, elapsed time.Duration) {
	initMetrics()
	fetchTotal.WithLabelValues(host, outcome).Inc()
	fetchDuration.WithLabelValues(host).Observe(elapsed.Seconds())
}

func ObserveEndpoint(endpoint, outcome string, ipv4, ipv6 int) {
	initMetrics()
	endpointResultTotal.WithLabelValues(endpoint, outcome).Inc()
	endpointPrefixes.WithLabelValues(endpoint, "ipv4").Set(float64(ipv4))
	endpointPrefixes.WithLabelValues(endpoint, "ipv6").Set(float64(ipv6))
}

func ObserveRegeneration(outcome string) {
	initMetrics()
	regenerationsTotal.WithLabelValues(outcome).Inc()
}

func SetArtifact(lines int, written time.Time) {
	initMetrics()
	artifactLines.Set(float64(lines))
	if !written.IsZero() {
		lastRefreshGauge.Set(float64(written.Unix()))
	}
}

func ObserveLookup(matched bool) {
	initMetrics()
	if matched {
		lookupsTotal.WithLabelValues("match").Inc()
	} else {
		lookupsTotal.WithLabelValues("miss").Inc()
	}
}
