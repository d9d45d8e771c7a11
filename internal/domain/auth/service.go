package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Service struct {
	Store  ClientStore
	Secret string
	TTL    time.Duration
}

func NewService(store ClientStore, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl}
}

// IssueToken exchanges client credentials for a signed bearer token.
func (s *Service) IssueToken(ctx context.Context, clientID, secret string) (Token, error) {
	client, err := s.Store.FindClient(ctx, clientID)
	if err != nil {
		return Token{}, err
	}
	if client.Disabled {
		return Token{}, ErrClientDisabled
	}
	if err := CheckSecret(client.SecretHash, secret); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	signed, err := GenerateToken(s.Secret, Claims{ClientID: client.ID, TenantID: client.TenantID, Role: client.Role}, s.TTL)
	if err != nil {
		return Token{}, err
	}
	if err := s.Store.TouchClient(ctx, client.ID); err != nil {
		slog.Warn("client last use update failed", "clientId", client.ID, "err", err)
	}
	return Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.TTL.Seconds()),
		TenantID:    client.TenantID,
		Role:        client.Role,
	}, nil
}

// HasPermission resolves role grants from the static role table.
func (s *Service) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	if _, ok := RolePermissions[role]; !ok {
		return false, errors.New("unknown role: " + role)
	}
	return RoleHasPermission(role, permission), nil
}
