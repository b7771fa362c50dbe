package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishpolice_analyses_total",
			Help: "Completed page analyses by verdict",
		},
		[]string{"verdict"},
	)

	CollectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phishpolice_collector_duration_seconds",
			Help:    "Wall time of each evidence collector",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collector"},
	)

	CollectorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishpolice_collector_failures_total",
			Help: "Collector calls that returned an error",
		},
		[]string{"collector"},
	)

	RejectedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phishpolice_rejected_requests_total",
			Help: "Requests refused before analysis started",
		},
		[]string{"reason"},
	)
)
