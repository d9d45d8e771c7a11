package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orgaudit/internal/platform/querier"
)

const (
	ActionEmployeesReplaced = "employees.replaced"
	ActionAuditRun          = "audit.run"
	ActionAuditQueued       = "audit.queued"

	EntityEmployees = "org_employees"
	EntityAuditRun  = "audit_run"
	EntityTenant    = "tenant"
)

// Event is one API client action against a tenant.
type Event struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenantId"`
	ClientID   string          `json:"clientId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Filter struct {
	Action   string
	ClientID string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, evt Event, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO activity_events (tenant_id, client_id, action, entity_type, entity_id, details_json, request_id, ip)
    VALUES ($1::uuid,$2,$3,$4,$5,$6,$7,$8)
  `, evt.TenantID, evt.ClientID, evt.Action, evt.EntityType, evt.EntityID, detailsJSON, evt.RequestID, evt.IP)
	return err
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery(
		"SELECT id::text, tenant_id::text, client_id, action, entity_type, entity_id, request_id, ip, created_at, details_json",
		tenantID, filter,
	)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var details []byte
		if err := rows.Scan(&evt.ID, &evt.TenantID, &evt.ClientID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &details); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			evt.Details = details
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM activity_events WHERE tenant_id::text = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.ClientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", len(args)+1)
		args = append(args, filter.ClientID)
	}
	return query, args
}
