package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of analytics service operations, cache hits included
	AnalyticsDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taxi_analytics_duration_seconds",
		Help:    "Latency of analytics operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	AnalyticsCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taxi_analytics_cache_hits_total",
		Help: "Analytics results served from cache",
	}, []string{"operation"})

	// Raw flag entries per detector pass, not distinct trips
	AnomaliesFlagged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taxi_anomalies_flagged_total",
		Help: "Anomaly records produced per reason",
	}, []string{"reason"})

	PipelineRowsRemoved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taxi_pipeline_rows_removed_total",
		Help: "Rows dropped by each cleaning step",
	}, []string{"step"})

	PipelineTripsSeeded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taxi_pipeline_trips_seeded_total",
		Help: "Trips written by the seeder",
	})
)

func Init() {
	prometheus.MustRegister(
		AnalyticsDuration,
		AnalyticsCacheHits,
		AnomaliesFlagged,
		PipelineRowsRemoved,
		PipelineTripsSeeded,
	)
}
