package org

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	cryptoutil "orgaudit/internal/platform/crypto"
	"orgaudit/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.SalaryCipher
}

func NewStore(db querier.Querier, crypto *cryptoutil.SalaryCipher) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id::text FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM tenants WHERE id::text = $1`, tenantID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, first_name, last_name, salary, salary_enc, COALESCE(manager_id, '')
    FROM org_employees
    WHERE tenant_id::text = $1
    ORDER BY position, id
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		var salaryPlain *float64
		var salaryEnc []byte
		if err := rows.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &salaryPlain, &salaryEnc, &emp.ManagerID); err != nil {
			return nil, err
		}
		salary, err := s.Crypto.Resolve(salaryEnc, salaryPlain)
		if err != nil {
			return nil, fmt.Errorf("employee %s salary: %w", emp.ID, err)
		}
		emp.Salary = salary
		out = append(out, emp)
	}
	return out, rows.Err()
}

// ReplaceEmployees swaps the tenant's whole employee set in one transaction;
// the set is the unit of analysis so partial updates are never stored.
func (s *Store) ReplaceEmployees(ctx context.Context, tenantID string, employees []Employee) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM org_employees WHERE tenant_id::text = $1`, tenantID); err != nil {
		return err
	}
	for position, emp := range employees {
		sealed, err := s.Crypto.Seal(emp.Salary)
		if err != nil {
			return err
		}
		var plain *float64
		if sealed == nil {
			salary := emp.Salary
			plain = &salary
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO org_employees (tenant_id, id, first_name, last_name, salary, salary_enc, manager_id, position)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, tenantID, emp.ID, emp.FirstName, emp.LastName, plain, sealed, nullIfEmpty(emp.ManagerID), position); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) CreateAuditRun(ctx context.Context, tenantID string, policyJSON []byte) (string, error) {
	var runID string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO audit_runs (tenant_id, status, policy_json)
    VALUES ($1,$2,$3)
    RETURNING id::text
  `, tenantID, RunStatusRunning, policyJSON).Scan(&runID)
	return runID, err
}

func (s *Store) FinishAuditRun(ctx context.Context, runID, status string, detailsJSON []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE audit_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id::text = $3
  `, status, detailsJSON, runID)
	return err
}

func (s *Store) CountAuditRuns(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM audit_runs WHERE tenant_id::text = $1`, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListAuditRuns(ctx context.Context, tenantID string, limit, offset int) ([]AuditRun, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, tenant_id::text, status, policy_json, details_json, started_at, completed_at
    FROM audit_runs
    WHERE tenant_id::text = $1
    ORDER BY started_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRun
	for rows.Next() {
		run, err := scanAuditRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) GetAuditRun(ctx context.Context, tenantID, runID string) (AuditRun, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id::text, tenant_id::text, status, policy_json, details_json, started_at, completed_at
    FROM audit_runs
    WHERE tenant_id::text = $1 AND id::text = $2
  `, tenantID, runID)
	run, err := scanAuditRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuditRun{}, ErrAuditRunNotFound
	}
	return run, err
}

func scanAuditRun(row pgx.Row) (AuditRun, error) {
	var run AuditRun
	var policyJSON, detailsJSON []byte
	var completedAt *time.Time
	if err := row.Scan(&run.ID, &run.TenantID, &run.Status, &policyJSON, &detailsJSON, &run.StartedAt, &completedAt); err != nil {
		return AuditRun{}, err
	}
	run.CompletedAt = completedAt
	if len(policyJSON) > 0 {
		if err := json.Unmarshal(policyJSON, &run.Policy); err != nil {
			return AuditRun{}, err
		}
	}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &run.Details); err != nil {
			return AuditRun{}, err
		}
	}
	return run, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
