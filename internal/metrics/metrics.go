package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed computations.
	OutcomeSuccess = "success"
	// OutcomeError labels computations rejected or aborted.
	OutcomeError = "error"
)

var (
	computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wigwag",
			Name:      "sensitivity_computations_total",
			Help:      "Total number of sensitivity computations, partitioned by noise budget and outcome.",
		},
		[]string{"noise_budget", "outcome"},
	)

	computationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wigwag",
			Name:      "sensitivity_computation_seconds",
			Help:      "Sensitivity computation latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"noise_budget"},
	)

	sourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wigwag",
			Name:      "sources_total",
			Help:      "Sources processed by sensitivity computations, partitioned by result.",
		},
		[]string{"result"},
	)

	waterfallRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wigwag",
			Name:      "waterfall_requests_total",
			Help:      "Waterfall contour requests, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches wigwag collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		computationsTotal,
		computationDurationSeconds,
		sourcesTotal,
		waterfallRequestsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveComputation records a computation duration and outcome label.
func ObserveComputation(budget string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	computationsTotal.WithLabelValues(budget, label).Inc()
	if duration < 0 {
		duration = 0
	}
	computationDurationSeconds.WithLabelValues(budget).Observe(duration.Seconds())
}

// ObserveSources records how many sources were computed and skipped.
func ObserveSources(computed, skipped int) {
	if computed > 0 {
		sourcesTotal.WithLabelValues("computed").Add(float64(computed))
	}
	if skipped > 0 {
		sourcesTotal.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// ObserveWaterfall records a waterfall request outcome.
func ObserveWaterfall(outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	waterfallRequestsTotal.WithLabelValues(label).Inc()
}
