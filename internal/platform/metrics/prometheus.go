package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type promMetrics struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	auditRuns     *prometheus.CounterVec
	auditDuration *prometheus.HistogramVec
	auditIssues   *prometheus.CounterVec
	findings      *prometheus.CounterVec
	lastEmployees prometheus.Gauge
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	factory := promauto.With(reg)
	return &promMetrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgaudit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by status code.",
		}, []string{"code"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orgaudit",
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets: []float64{
				0.001, 0.005, 0.01,
				0.05, 0.1, 0.5,
				1, 2, 5,
			},
		}, []string{"code"}),
		auditRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgaudit",
			Subsystem: "audit",
			Name:      "runs_total",
			Help:      "Total number of audit runs broken down by final status.",
		}, []string{"status"}),
		auditDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orgaudit",
			Subsystem: "audit",
			Name:      "duration_seconds",
			Help:      "Duration of audit runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		auditIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgaudit",
			Subsystem: "audit",
			Name:      "issues_total",
			Help:      "Policy violations found by audits, by kind.",
		}, []string{"kind"}),
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgaudit",
			Subsystem: "validation",
			Name:      "findings_total",
			Help:      "Structural validation findings, by severity.",
		}, []string{"severity"}),
		lastEmployees: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "orgaudit",
			Subsystem: "audit",
			Name:      "last_employee_count",
			Help:      "Number of employees in the most recently analysed set.",
		}),
	}
}
