package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"orgaudit/internal/platform/querier"
)

type ClientStore interface {
	FindClient(ctx context.Context, clientID string) (Client, error)
	TouchClient(ctx context.Context, clientID string) error
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindClient(ctx context.Context, clientID string) (Client, error) {
	var out Client
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id::text, secret_hash, role, disabled
    FROM api_clients
    WHERE id = $1
  `, clientID).Scan(&out.ID, &out.TenantID, &out.SecretHash, &out.Role, &out.Disabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrInvalidCredentials
	}
	return out, err
}

func (s *Store) TouchClient(ctx context.Context, clientID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE api_clients SET last_used_at = now() WHERE id = $1", clientID)
	return err
}
