package activity

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestBuildBaseQueryFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "t1", Filter{})
	if len(args) != 1 || strings.Contains(query, "action") {
		t.Fatalf("unexpected unfiltered query %q %v", query, args)
	}

	query, args = buildBaseQuery("SELECT COUNT(1)", "t1", Filter{Action: ActionAuditRun, ClientID: "ci"})
	if !strings.Contains(query, "action = $2") || !strings.Contains(query, "client_id = $3") {
		t.Fatalf("unexpected filtered query %q", query)
	}
	if len(args) != 3 || args[1] != ActionAuditRun || args[2] != "ci" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestRecordAndList(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var tenantID string
	if err := pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ('activity-' || gen_random_uuid()::text) RETURNING id::text").Scan(&tenantID); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	svc := New(pool)
	evt := Event{TenantID: tenantID, ClientID: "ci", Action: ActionEmployeesReplaced, EntityType: EntityEmployees, EntityID: tenantID, RequestID: "req-1"}
	if err := svc.Record(ctx, evt, map[string]int{"employees": 5}); err != nil {
		t.Fatalf("record: %v", err)
	}
	total, err := svc.Count(ctx, tenantID, Filter{Action: ActionEmployeesReplaced})
	if err != nil || total != 1 {
		t.Fatalf("expected one event, got %d (%v)", total, err)
	}
	events, err := svc.List(ctx, tenantID, Filter{}, 10, 0)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected one listed event, got %d (%v)", len(events), err)
	}
	if !strings.Contains(string(events[0].Details), `"employees":5`) {
		t.Fatalf("unexpected details %s", events[0].Details)
	}
}
