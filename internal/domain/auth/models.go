package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid client credentials")
	ErrClientDisabled     = errors.New("client disabled")
)

// ClientContext is the authenticated caller carried on the request context.
type ClientContext struct {
	ClientID string
	TenantID string
	Role     string
}

type Client struct {
	ID         string
	TenantID   string
	SecretHash string
	Role       string
	Disabled   bool
}

type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
	TenantID    string `json:"tenantId"`
	Role        string `json:"role"`
}
