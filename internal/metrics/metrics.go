package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document processing. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Processed documents by final status
	DocumentsProcessed *prometheus.CounterVec

	// OCR latency by engine outcome
	OCRLatency *prometheus.HistogramVec

	// Verification confidence distribution
	VerificationConfidence prometheus.Histogram

	// Candidates returned by match requests
	MatchResults prometheus.Counter
}

// New registers the document metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loandocs_documents_processed_total",
			Help: "Total processed documents by verification status",
		}, []string{"status"}), // status: "verified", "rejected", "unverified"

		OCRLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loandocs_ocr_duration_seconds",
			Help:    "Duration of OCR recognition by outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}), // outcome: "success", "error"

		VerificationConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "loandocs_verification_confidence_percent",
			Help:    "Confidence of document verification results",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		MatchResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "loandocs_match_results_total",
			Help: "Total ranked candidates returned by document matching",
		}),
	}
}

func (m *Metrics) IncrementProcessed(status string) {
	if m != nil {
		m.DocumentsProcessed.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveOCRLatency(outcome string, d time.Duration) {
	if m != nil {
		m.OCRLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveConfidence(confidence float64) {
	if m != nil {
		m.VerificationConfidence.Observe(confidence)
	}
}

func (m *Metrics) AddMatchResults(n int) {
	if m != nil {
		m.MatchResults.Add(float64(n))
	}
}
