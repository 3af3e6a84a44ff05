package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementProcessed("verified")
	m.IncrementProcessed("verified")
	m.IncrementProcessed("unverified")
	m.AddMatchResults(3)
	m.ObserveOCRLatency("success", 150*time.Millisecond)
	m.ObserveConfidence(66.6)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues("unverified")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MatchResults))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OCRLatency))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementProcessed("verified")
		m.ObserveOCRLatency("error", time.Second)
		m.ObserveConfidence(10)
		m.AddMatchResults(1)
	})
}
