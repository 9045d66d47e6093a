package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusServiceStarts          *prometheus.CounterVec
	prometheusServiceOutcomes        *prometheus.CounterVec
	prometheusServiceErrors          *prometheus.CounterVec
	prometheusServiceExecuteDuration *prometheus.HistogramVec
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusServiceStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chetch",
			Subsystem: "service",
			Name:      "starts_total",
			Help:      "Number of times a service was started",
		},
		[]string{"service"},
	)

	prometheusServiceOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chetch",
			Subsystem: "service",
			Name:      "outcomes_total",
			Help:      "Number of finished executions by outcome",
		},
		[]string{"service", "outcome"},
	)

	prometheusServiceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chetch",
			Subsystem: "service",
			Name:      "errors_total",
			Help:      "Number of errors logged by a service, by category",
		},
		[]string{"service", "category"},
	)

	prometheusServiceExecuteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chetch",
			Subsystem: "service",
			Name:      "execute_duration_seconds",
			Help:      "Duration of a service execution",
			Buckets:   prometheus.ExponentialBuckets(0.001, 10, 8),
		},
		[]string{"service"},
	)
}
