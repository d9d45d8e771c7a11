package org

import (
	"context"
	"encoding/json"
	"time"

	"orgaudit/internal/requestctx"
)

// AuditRecorder receives one observation per finished audit run.
type AuditRecorder interface {
	RecordAudit(status string, duration time.Duration, report *Report)
}

type Service struct {
	Store    StoreAPI
	Recorder AuditRecorder
}

func NewService(store StoreAPI, recorder AuditRecorder) *Service {
	return &Service{Store: store, Recorder: recorder}
}

func (s *Service) ListTenants(ctx context.Context) ([]string, error) {
	return s.Store.ListTenants(ctx)
}

func (s *Service) LoadEmployeeSet(ctx context.Context, tenantID string) (*EmployeeSet, error) {
	exists, err := s.Store.TenantExists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTenantNotFound
	}
	employees, err := s.Store.ListEmployees(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return NewEmployeeSet(employees...)
}

func (s *Service) ReplaceEmployees(ctx context.Context, tenantID string, set *EmployeeSet) error {
	exists, err := s.Store.TenantExists(ctx, tenantID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTenantNotFound
	}
	return s.Store.ReplaceEmployees(ctx, tenantID, set.Employees())
}

func (s *Service) CountAuditRuns(ctx context.Context, tenantID string) (int, error) {
	return s.Store.CountAuditRuns(ctx, tenantID)
}

func (s *Service) ListAuditRuns(ctx context.Context, tenantID string, limit, offset int) ([]AuditRun, error) {
	return s.Store.ListAuditRuns(ctx, tenantID, limit, offset)
}

func (s *Service) GetAuditRun(ctx context.Context, tenantID, runID string) (AuditRun, error) {
	return s.Store.GetAuditRun(ctx, tenantID, runID)
}

// RunAudit audits the tenant's stored employee set and records the run.
// A structurally invalid set is a completed run with status invalid, not an error.
func (s *Service) RunAudit(ctx context.Context, tenantID string, policy Policy, opts AuditOptions) (string, *Report, error) {
	if err := policy.Validate(); err != nil {
		return "", nil, err
	}
	set, err := s.LoadEmployeeSet(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}

	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return "", nil, err
	}
	runID, err := s.Store.CreateAuditRun(ctx, tenantID, policyJSON)
	if err != nil {
		return "", nil, err
	}

	start := time.Now()
	report, auditErr := Audit(set, policy, opts)
	status := RunStatusCompleted
	details := map[string]any{}
	switch {
	case auditErr != nil:
		status = RunStatusFailed
		details["error"] = auditErr.Error()
	case report.Outcome() == OutcomeValidationFailed:
		status = RunStatusInvalid
		details["validation"] = report.Validation
	default:
		details["validation"] = report.Validation
		details["stats"] = report.Stats
	}

	logger := requestctx.Logger(ctx).With("tenantId", tenantID, "runId", runID)
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		logger.Warn("audit details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if err := s.Store.FinishAuditRun(ctx, runID, status, detailsJSON); err != nil {
		logger.Warn("audit run update failed", "err", err)
	}
	logger.Info("audit run finished", "status", status, "durationMs", time.Since(start).Milliseconds())
	if s.Recorder != nil {
		s.Recorder.RecordAudit(status, time.Since(start), report)
	}
	if auditErr != nil {
		return runID, nil, auditErr
	}
	return runID, report, nil
}
