package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "plant_"

	resultSuccess = "success"
	resultError   = "error"
	resultInvalid = "invalid"
	resultMissing = "not_found"
)

var (
	registerOnce sync.Once

	ingestTicks       *prometheus.CounterVec
	ingestTickLatency *prometheus.HistogramVec
	readingsIngested  *prometheus.CounterVec
	lastIngestAt      prometheus.Gauge

	seedRuns *prometheus.CounterVec

	dashboardTotal   *prometheus.CounterVec
	dashboardLatency *prometheus.HistogramVec

	readingsQueryTotal   *prometheus.CounterVec
	readingsQueryLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	streamOnce    sync.Once
	streamClients prometheus.GaugeFunc
)

// Init registers plant metrics and, when db is set, DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestTicks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_ticks_total",
				Help: "Total live ingestion ticks by result",
			},
			[]string{"result"},
		)
		ingestTickLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_tick_latency_seconds",
				Help:    "Live ingestion tick latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		readingsIngested = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_ingested_total",
				Help: "Total sensor readings written by source",
			},
			[]string{"source"},
		)
		lastIngestAt = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ingest_last_success_timestamp_seconds",
				Help: "Unix time of the last committed ingestion batch",
			},
		)

		seedRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "seed_runs_total",
				Help: "Historical seed runs by outcome",
			},
			[]string{"outcome"},
		)

		dashboardTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dashboard_total",
				Help: "Total dashboard computations by result",
			},
			[]string{"result"},
		)
		dashboardLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dashboard_latency_seconds",
				Help:    "Dashboard computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		readingsQueryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_query_total",
				Help: "Total readings queries by result",
			},
			[]string{"result"},
		)
		readingsQueryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "readings_query_latency_seconds",
				Help:    "Readings query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		prometheus.MustRegister(
			ingestTicks,
			ingestTickLatency,
			readingsIngested,
			lastIngestAt,
			seedRuns,
			dashboardTotal,
			dashboardLatency,
			readingsQueryTotal,
			readingsQueryLatency,
			httpRequests,
			httpLatency,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "plant"))
			registerDBMetrics(db, logger)
		}
	})
}

// RegisterStreamClients exposes the number of connected stream clients.
// Only the first call registers.
func RegisterStreamClients(count func() int) {
	if count == nil {
		return
	}
	streamOnce.Do(func() {
		streamClients = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stream_clients",
				Help: "Connected Server-Sent Events clients",
			},
			func() float64 { return float64(count()) },
		)
		prometheus.MustRegister(streamClients)
	})
}

// ObserveIngestTick records a live ingestion tick.
func ObserveIngestTick(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestTicks != nil {
		ingestTicks.WithLabelValues(result).Inc()
	}
	if ingestTickLatency != nil {
		ingestTickLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddReadingsIngested counts committed readings and stamps the last success time.
func AddReadingsIngested(source string, count int, at time.Time) {
	if source == "" {
		source = "unknown"
	}
	if count < 0 {
		count = 0
	}
	if readingsIngested != nil {
		readingsIngested.WithLabelValues(source).Add(float64(count))
	}
	if lastIngestAt != nil && !at.IsZero() {
		lastIngestAt.Set(float64(at.Unix()))
	}
}

// IncSeedRun counts a historical seed run.
func IncSeedRun(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if seedRuns != nil {
		seedRuns.WithLabelValues(outcome).Inc()
	}
}

// ObserveDashboard records a dashboard computation.
func ObserveDashboard(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if dashboardTotal != nil {
		dashboardTotal.WithLabelValues(result).Inc()
	}
	if dashboardLatency != nil {
		dashboardLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReadingsQuery records a readings query.
func ObserveReadingsQuery(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if readingsQueryTotal != nil {
		readingsQueryTotal.WithLabelValues(result).Inc()
	}
	if readingsQueryLatency != nil {
		readingsQueryLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveHTTP records an HTTP request.
func ObserveHTTP(method, code string, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, code).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultInvalid  = resultInvalid
	ResultNotFound = resultMissing

	SeedOutcomeSeeded  = "seeded"
	SeedOutcomeSkipped = "skipped"
	SeedOutcomeFailed  = "failed"
)
