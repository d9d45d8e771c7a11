package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"orgaudit/internal/domain/auth"
)

func TestAuthMiddlewareSetsClient(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{ClientID: "c1", TenantID: "t1", Role: auth.RoleAuditor}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		client, ok := GetClient(r.Context())
		if !ok {
			t.Fatal("expected client in context")
		}
		if client.ClientID != "c1" || client.Role != auth.RoleAuditor {
			t.Fatalf("unexpected client: %+v", client)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClient(r.Context()); ok {
			t.Fatal("did not expect client in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestAuthMiddlewareIgnoresForgedToken(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", auth.Claims{ClientID: "c1", Role: auth.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	handler := Auth("secret")(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("forged token must not reach the handler")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type staticPerms map[string]bool

func (s staticPerms) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	if role == "broken" {
		return false, errors.New("lookup failed")
	}
	return s[role+"/"+permission], nil
}

func TestRequirePermission(t *testing.T) {
	perms := staticPerms{"auditor/" + auth.PermAuditRun: true}
	handler := RequirePermission(auth.PermAuditRun, perms)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		client *auth.ClientContext
		want   int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "allowed", client: &auth.ClientContext{ClientID: "c", Role: "auditor"}, want: http.StatusNoContent},
		{name: "denied", client: &auth.ClientContext{ClientID: "c", Role: "viewer"}, want: http.StatusForbidden},
		{name: "lookup error", client: &auth.ClientContext{ClientID: "c", Role: "broken"}, want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.client != nil {
				req = req.WithContext(WithClient(req.Context(), *tc.client))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequireTenantAccess(t *testing.T) {
	router := chi.NewRouter()
	router.With(RequireTenantAccess).Get("/tenants/{tenantID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	own := httptest.NewRequest(http.MethodGet, "/tenants/t1", nil)
	own = own.WithContext(WithClient(own.Context(), auth.ClientContext{ClientID: "c", TenantID: "t1"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, own)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected own tenant to pass, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/tenants/t2", nil)
	other = other.WithContext(WithClient(other.Context(), auth.ClientContext{ClientID: "c", TenantID: "t1"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, other)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected other tenant to be denied, got %d", rec.Code)
	}
}
