package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"orgaudit/internal/domain/auth"
	"orgaudit/internal/transport/http/api"
	"orgaudit/internal/transport/http/middleware"
	"orgaudit/internal/transport/http/shared"
)

type TokenIssuer interface {
	IssueToken(ctx context.Context, clientID, secret string) (auth.Token, error)
}

type Handler struct {
	Tokens TokenIssuer
}

func NewHandler(tokens TokenIssuer) *Handler {
	return &Handler{Tokens: tokens}
}

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("clientId", payload.ClientID, "is required")
	validator.Required("clientSecret", payload.ClientSecret, "is required")
	if validator.Reject(w, requestID) {
		return
	}

	token, err := h.Tokens.IssueToken(r.Context(), payload.ClientID, payload.ClientSecret)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrClientDisabled):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	case err != nil:
		slog.Error("token issue failed", "clientId", payload.ClientID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	api.Success(w, token, requestID)
}
