package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PassesTotal counts resolution passes by what triggered them
	PassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appearance_engine_passes_total",
			Help: "Total number of appearance resolution passes",
		},
		[]string{"reason"},
	)

	// PassDuration tracks how long a full resolution pass takes
	PassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "appearance_engine_pass_duration_seconds",
			Help:    "Duration of a full appearance resolution pass",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	// ResolvedItems tracks the size of the rendering store after the last pass
	ResolvedItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "appearance_engine_resolved_items",
			Help: "Number of items written to the rendering store by the last pass",
		},
		[]string{"item_type"},
	)

	// MissingValues is 1 for captioned channels where some visible item has no value
	MissingValues = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "appearance_engine_missing_values",
			Help: "Whether visible items lack a value for a ranking or partition channel",
		},
		[]string{"channel"},
	)

	// PublishErrors counts events that could not be published
	PublishErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appearance_engine_publish_errors_total",
			Help: "Total number of events that failed to publish",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(PassesTotal)
	prometheus.MustRegister(PassDuration)
	prometheus.MustRegister(ResolvedItems)
	prometheus.MustRegister(MissingValues)
	prometheus.MustRegister(PublishErrors)
}

// ObservePass records one completed resolution pass
func ObservePass(reason string, elapsed time.Duration, nodes, edges int) {
	PassesTotal.WithLabelValues(reason).Inc()
	PassDuration.Observe(elapsed.Seconds())
	ResolvedItems.WithLabelValues("nodes").Set(float64(nodes))
	ResolvedItems.WithLabelValues("edges").Set(float64(edges))
}

// ObserveMissing records whether a captioned channel has items without a value
func ObserveMissing(channel string, missing bool) {
	v := 0.0
	if missing {
		v = 1
	}
	MissingValues.WithLabelValues(channel).Set(v)
}
