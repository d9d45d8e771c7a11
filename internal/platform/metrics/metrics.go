package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgaudit/internal/domain/org"
)

// Collector keeps cheap in-process counters for the JSON metrics endpoint and,
// when built with a registry, mirrors them into Prometheus.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	auditRuns       uint64
	auditFailures   uint64
	auditIssues     uint64

	registry *prometheus.Registry
	prom     *promMetrics
}

func New() *Collector {
	return &Collector{}
}

// NewWithRegistry registers the Prometheus series on reg. A nil registry gets a fresh one.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Collector{registry: reg, prom: newPromMetrics(reg)}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == http.StatusTooManyRequests {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
	if c.prom != nil {
		code := strconv.Itoa(status)
		c.prom.httpRequests.WithLabelValues(code).Inc()
		c.prom.httpLatency.WithLabelValues(code).Observe(duration.Seconds())
	}
}

// RecordAudit implements org.AuditRecorder.
func (c *Collector) RecordAudit(status string, duration time.Duration, report *org.Report) {
	atomic.AddUint64(&c.auditRuns, 1)
	if status == org.RunStatusFailed {
		atomic.AddUint64(&c.auditFailures, 1)
	}
	var stats *org.Statistics
	if report != nil {
		stats = report.Stats
	}
	if stats != nil {
		atomic.AddUint64(&c.auditIssues, uint64(stats.TotalIssues()))
	}
	if c.prom == nil {
		return
	}
	c.prom.auditRuns.WithLabelValues(status).Inc()
	c.prom.auditDuration.WithLabelValues(status).Observe(duration.Seconds())
	if stats != nil {
		c.prom.auditIssues.WithLabelValues("underpaid").Add(float64(stats.UnderpaidManagers))
		c.prom.auditIssues.WithLabelValues("overpaid").Add(float64(stats.OverpaidManagers))
		c.prom.auditIssues.WithLabelValues("long_reporting_line").Add(float64(stats.LongReportingLines))
		c.prom.lastEmployees.Set(float64(stats.TotalEmployees))
	}
	if report != nil {
		c.prom.findings.WithLabelValues(string(org.SeverityError)).Add(float64(report.Validation.ErrorCount()))
		c.prom.findings.WithLabelValues(string(org.SeverityWarning)).Add(float64(report.Validation.WarningCount()))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"auditRunsTotal":   atomic.LoadUint64(&c.auditRuns),
		"auditFailures":    atomic.LoadUint64(&c.auditFailures),
		"auditIssuesTotal": atomic.LoadUint64(&c.auditIssues),
	}
}

// Handler serves the Prometheus exposition format, or 404 when Prometheus is off.
func (c *Collector) Handler() http.Handler {
	if c.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
