// Package observability exposes Prometheus metrics for the EcoTrack service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecotrack",
		Subsystem: "activities",
		Name:      "logged_total",
		Help:      "Number of activities persisted, labeled by category.",
	}, []string{"category"})

	emissionLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecotrack",
		Subsystem: "activities",
		Name:      "emission_kg_total",
		Help:      "Total kg CO2 persisted across logged activities, labeled by category.",
	}, []string{"category"})

	lastActivityPersisted = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecotrack",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})

	statsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ecotrack",
		Subsystem: "stats",
		Name:      "request_duration_seconds",
		Help:      "Time spent recomputing emission stats from the full activity set.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(activitiesLogged, emissionLogged, lastActivityPersisted, statsDuration)
}

// RecordActivityPersisted updates write-side counters and the persistence
// watermark gauge.
func RecordActivityPersisted(category string, emissionKg float64, ts time.Time) {
	activitiesLogged.WithLabelValues(category).Inc()
	emissionLogged.WithLabelValues(category).Add(emissionKg)
	if !ts.IsZero() {
		lastActivityPersisted.Set(float64(ts.Unix()))
	}
}

// ObserveStatsRequest records how long a stats recomputation took.
func ObserveStatsRequest(d time.Duration) {
	statsDuration.Observe(d.Seconds())
}
