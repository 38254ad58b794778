package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncPersonsCreated(2)
	m.IncPlaceholder("father")
	m.AddSpouseEdges("created", 2)
	m.AddSpouseEdges("removed", 0)
	m.IncRateLimited("auth")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PersonsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlaceholdersSynthesized.WithLabelValues("father")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SpouseEdges.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SpouseEdges.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("auth")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPersonsCreated(1)
		m.IncPersonsDeleted()
		m.IncPhotoDeleteFailures()
		m.IncRateLimited("read")
		m.ObserveRequest("GET", "/api/family", "200", 0.01)
	})
}
