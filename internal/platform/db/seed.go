package db

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"orgaudit/internal/domain/auth"
	"orgaudit/internal/platform/config"
)

// Seed makes sure the configured tenant exists and, when credentials are set,
// that a bootstrap admin API client can request tokens.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}
	return ensureClient(ctx, pool, tenantID, cfg.SeedClientID, cfg.SeedClientSecret, auth.RoleAdmin)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id::text FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id::text", name).Scan(&id)
	if err != nil {
		return "", err
	}
	slog.Info("seeded tenant", "tenantId", id, "name", name)
	return id, nil
}

func ensureClient(ctx context.Context, pool *pgxpool.Pool, tenantID, clientID, secret, role string) error {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(secret) == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM api_clients WHERE id = $1", clientID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, "INSERT INTO api_clients (id, tenant_id, secret_hash, role) VALUES ($1, $2, $3, $4)", clientID, tenantID, hash, role)
	return err
}
