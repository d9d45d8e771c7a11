package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/requestctx"
)

const (
	JobScheduledAudit = "scheduled_audit"
	JobRequestedAudit = "requested_audit"
)

// AuditRunner is the slice of org.Service the scheduler drives.
type AuditRunner interface {
	ListTenants(ctx context.Context) ([]string, error)
	RunAudit(ctx context.Context, tenantID string, policy org.Policy, opts org.AuditOptions) (string, *org.Report, error)
}

type RunStore interface {
	StartRun(ctx context.Context, tenantID, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, detailsJSON []byte) error
}

// AuditNotifier hears about every background audit once it has finished.
type AuditNotifier interface {
	AuditFinished(ctx context.Context, tenantID, runID string, report *org.Report, err error)
}

type Service struct {
	Runs     RunStore
	Audits   AuditRunner
	Notifier AuditNotifier
	Policy   org.Policy
	Interval time.Duration
	queue    chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(runs RunStore, audits AuditRunner, policy org.Policy, interval time.Duration) *Service {
	return &Service{
		Runs:     runs,
		Audits:   audits,
		Policy:   policy,
		Interval: interval,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.scheduleAudits(ctx, s.Interval)
	}
}

// Enqueue reports false when the queue is full and the job was dropped.
func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		return false
	}
}

// EnqueueAudit queues an audit of one tenant with the service policy.
func (s *Service) EnqueueAudit(jobType, tenantID string) bool {
	return s.Enqueue(jobType, tenantID, s.auditTask(tenantID))
}

func (s *Service) auditTask(tenantID string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		runID, report, err := s.Audits.RunAudit(ctx, tenantID, s.Policy, org.AuditOptions{})
		if s.Notifier != nil {
			s.Notifier.AuditFinished(ctx, tenantID, runID, report, err)
		}
		details := map[string]any{"auditRunId": runID}
		if report != nil {
			details["valid"] = report.Validation.Valid()
			if report.Stats != nil {
				details["totalIssues"] = report.Stats.TotalIssues()
			}
		}
		return details, err
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.Runs != nil {
		id, err := s.Runs.StartRun(ctx, j.TenantID, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
		runID = id
	}

	details, err := j.Run(requestctx.WithJobRun(ctx, runID))
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.Runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleAudits(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAllTenants(ctx)
		}
	}
}

func (s *Service) enqueueAllTenants(ctx context.Context) int {
	tenants, err := s.Audits.ListTenants(ctx)
	if err != nil {
		slog.Warn("audit scheduler tenant lookup failed", "err", err)
		return 0
	}
	queued := 0
	for _, tenantID := range tenants {
		if s.EnqueueAudit(JobScheduledAudit, tenantID) {
			queued++
		}
	}
	slog.Info("scheduled audits queued", "tenants", len(tenants), "queued", queued)
	return queued
}
