package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the agent.
type Metrics struct {
	Registry       *prometheus.Registry
	RequestsTotal  *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	ExtractsTotal  prometheus.Counter
	RetriesTotal   prometheus.Counter
	CacheHitsTotal prometheus.Counter
	RateLimitWaits prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_requests_total",
			Help: "Total scrape requests handled by the agent.",
		},
		[]string{"phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_fetch_duration_seconds",
			Help:    "End-to-end fetch latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	extracts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_products_extracted_total",
			Help: "Total product records extracted from fetched content.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_retries_total",
			Help: "Total fetch retry attempts scheduled.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_cache_hits_total",
			Help: "Scrapes answered from the recent-result cache.",
		},
	)
	rateLimitWaits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_rate_limit_waits_total",
			Help: "Scrapes that had to wait for per-domain capacity.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_errors_total",
			Help: "Total scrape failures by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, fetchDuration, extracts, retries, cacheHits, rateLimitWaits, errorsTotal)

	return &Metrics{
		Registry:       registry,
		RequestsTotal:  requests,
		FetchDuration:  fetchDuration,
		ExtractsTotal:  extracts,
		RetriesTotal:   retries,
		CacheHitsTotal: cacheHits,
		RateLimitWaits: rateLimitWaits,
		ErrorsTotal:    errorsTotal,
	}
}

// IncRequest increments the requests counter for a lifecycle phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveFetchDuration records one fetch cycle's latency.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncExtracts increments the extracted-products counter.
func (m *Metrics) IncExtracts() {
	if m == nil {
		return
	}
	m.ExtractsTotal.Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncCacheHits increments the cache-hit counter.
func (m *Metrics) IncCacheHits() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncRateLimitWaits increments the rate-limit wait counter.
func (m *Metrics) IncRateLimitWaits() {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
