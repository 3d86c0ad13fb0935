package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMetrics_Registered(t *testing.T) {
	EventsPublished.WithLabelValues("registered-topic", ResultPublished)
	EventPublishDuration.WithLabelValues("registered-topic")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}

	assert.True(t, names["storefront_events_published_total"])
	assert.True(t, names["storefront_event_publish_duration_seconds"])
}

func TestEventsPublished_ResultsAreSeparate(t *testing.T) {
	topic := "metrics-test-topic"
	published := testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultPublished))
	dropped := testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultDropped))

	EventsPublished.WithLabelValues(topic, ResultPublished).Inc()
	EventsPublished.WithLabelValues(topic, ResultPublished).Inc()
	EventsPublished.WithLabelValues(topic, ResultDropped).Inc()

	assert.InDelta(t, published+2, testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultPublished)), 0.001)
	assert.InDelta(t, dropped+1, testutil.ToFloat64(EventsPublished.WithLabelValues(topic, ResultDropped)), 0.001)
}
