package org

import "context"

type StoreAPI interface {
	ListTenants(ctx context.Context) ([]string, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	ListEmployees(ctx context.Context, tenantID string) ([]Employee, error)
	ReplaceEmployees(ctx context.Context, tenantID string, employees []Employee) error
	CreateAuditRun(ctx context.Context, tenantID string, policyJSON []byte) (string, error)
	FinishAuditRun(ctx context.Context, runID, status string, detailsJSON []byte) error
	CountAuditRuns(ctx context.Context, tenantID string) (int, error)
	ListAuditRuns(ctx context.Context, tenantID string, limit, offset int) ([]AuditRun, error)
	GetAuditRun(ctx context.Context, tenantID, runID string) (AuditRun, error)
}
