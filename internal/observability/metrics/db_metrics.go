package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "facilities",
			Help: "Registered facilities",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM facilities")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "assets",
			Help: "Registered assets",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM assets")
		},
	))

	// reltuples is the planner estimate, refreshed by ANALYZE.
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "sensor_readings_estimate",
			Help: "Estimated sensor readings from table statistics",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT GREATEST(reltuples, 0)::bigint FROM pg_class WHERE relname = 'sensor_readings'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
