package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the report pipeline collectors.
// Labels never carry user ids or anything derived from a payload.
type Metrics struct {
	ReportsGenerated *prometheus.CounterVec
	ReportOpens      *prometheus.CounterVec
	SealDuration     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerdesk_reports_generated_total",
				Help: "Encrypted reports rendered, by payload source",
			},
			[]string{"source"},
		),
		ReportOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerdesk_report_opens_total",
				Help: "Server-side report open attempts, by outcome",
			},
			[]string{"outcome"},
		),
		SealDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "careerdesk_report_seal_seconds",
				Help:    "Time spent deriving the key and sealing a report payload",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
		),
	}
	reg.MustRegister(m.ReportsGenerated, m.ReportOpens, m.SealDuration)
	return m
}

// Noop returns collectors registered nowhere, for callers that do not export metrics.
func Noop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
