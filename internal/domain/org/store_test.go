package org

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "orgaudit/internal/platform/crypto"
)

func TestNullIfEmpty(t *testing.T) {
	if value := nullIfEmpty(""); value != nil {
		t.Fatal("expected nil for empty string")
	}
	if value := nullIfEmpty("value"); value == nil {
		t.Fatal("expected value for non-empty string")
	}
}

func TestStoreReplaceAndListEmployees(t *testing.T) {
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
	if err := pool.QueryRow(ctx, `INSERT INTO tenants (name) VALUES ('store test') RETURNING id::text`).Scan(&tenantID); err != nil {
		t.Fatalf("tenant insert: %v", err)
	}
	defer func() { _, _ = pool.Exec(ctx, `DELETE FROM tenants WHERE id::text = $1`, tenantID) }()

	cipher, err := cryptoutil.NewSalaryCipher("")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	store := NewStore(pool, cipher)
	set := salarySet(t, 65000)
	if err := store.ReplaceEmployees(ctx, tenantID, set.Employees()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	employees, err := store.ListEmployees(ctx, tenantID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(employees) != 3 || employees[0].ID != "1" || employees[1].ManagerID != "1" {
		t.Fatalf("unexpected employees: %+v", employees)
	}
}
