package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish results recorded on EventsPublished.
const (
	ResultPublished = "published"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

var (
	// EventsPublished counts domain events by topic and outcome. Dropped
	// events are those discarded while publishing is disabled.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Domain events handed to Kafka, by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_event_publish_duration_seconds",
			Help:    "Time spent writing a domain event to Kafka",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)
