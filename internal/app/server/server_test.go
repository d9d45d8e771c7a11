package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"orgaudit/internal/app/server"
	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/config"
)

const sampleCSV = `Id,firstName,lastName,salary,managerId
123,Joe,Doe,60000,
124,Martin,Chekov,45000,123
125,Bob,Ronstad,47000,123
300,Alice,Hasacat,50000,124
305,Brett,Hardleaf,34000,300
`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:        "test",
		SeedTenantName:     "Audit Test Tenant",
		SeedClientID:       "audit-test-admin",
		SeedClientSecret:   "ChangeMe123!ChangeMe",
		RunMigrations:      true,
		MigrationsDir:      filepath.Join("..", "..", "..", "migrations"),
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		CacheTTL:           time.Minute,
		MetricsEnabled:     true,
		Policy:             org.DefaultPolicy(),
	}
}

func TestTenantAuditJourney(t *testing.T) {
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	token, tenantID := issueToken(t, client, ts.URL, cfg.SeedClientID, cfg.SeedClientSecret)

	status, _ := call(t, client, http.MethodPut, ts.URL+"/api/v1/tenants/"+tenantID+"/employees", token, "text/csv", sampleCSV)
	if status != http.StatusOK {
		t.Fatalf("expected employee import to succeed, got %d", status)
	}

	status, body := call(t, client, http.MethodPost, ts.URL+"/api/v1/tenants/"+tenantID+"/audits", token, "", "")
	if status != http.StatusCreated {
		t.Fatalf("expected audit run to be created, got %d: %s", status, body)
	}
	var run struct {
		RunID   string `json:"runId"`
		Outcome int    `json:"outcome"`
	}
	decodeData(t, body, &run)
	if run.RunID == "" || run.Outcome != int(org.OutcomeIssuesFound) {
		t.Fatalf("unexpected run: %+v", run)
	}

	status, body = call(t, client, http.MethodGet, ts.URL+"/api/v1/tenants/"+tenantID+"/audits/"+run.RunID, token, "", "")
	if status != http.StatusOK {
		t.Fatalf("expected stored run, got %d", status)
	}
	var stored org.AuditRun
	decodeData(t, body, &stored)
	if stored.Status != org.RunStatusCompleted || stored.CompletedAt == nil {
		t.Fatalf("unexpected stored run: %+v", stored)
	}

	status, _ = call(t, client, http.MethodGet, ts.URL+"/api/v1/tenants/not-my-tenant/audits", token, "", "")
	if status != http.StatusForbidden {
		t.Fatalf("expected cross-tenant access to be forbidden, got %d", status)
	}

	status, body = call(t, client, http.MethodGet, ts.URL+"/metrics", "", "", "")
	if status != http.StatusOK || !strings.Contains(body, "orgaudit_audit_runs_total") {
		t.Fatalf("expected prometheus exposition, got %d", status)
	}
}

func TestStatelessAnalyzeRequiresToken(t *testing.T) {
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	status, _ := call(t, client, http.MethodPost, ts.URL+"/api/v1/audits/analyze", "", "text/csv", sampleCSV)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	token, _ := issueToken(t, client, ts.URL, cfg.SeedClientID, cfg.SeedClientSecret)
	status, _ = call(t, client, http.MethodPost, ts.URL+"/api/v1/audits/analyze", token, "text/csv", sampleCSV)
	if status != http.StatusOK {
		t.Fatalf("expected analyze to succeed, got %d", status)
	}

	status, _ = call(t, client, http.MethodGet, ts.URL+"/readyz", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected ready, got %d", status)
	}
}

func issueToken(t *testing.T, client *http.Client, baseURL, clientID, secret string) (string, string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"clientId": clientID, "clientSecret": secret})
	status, body := call(t, client, http.MethodPost, baseURL+"/api/v1/auth/token", "", "application/json", string(payload))
	if status != http.StatusOK {
		t.Fatalf("token request failed: %d %s", status, body)
	}
	var token struct {
		AccessToken string `json:"accessToken"`
		TenantID    string `json:"tenantId"`
	}
	decodeData(t, body, &token)
	if token.AccessToken == "" || token.TenantID == "" {
		t.Fatalf("unexpected token payload: %s", body)
	}
	return token.AccessToken, token.TenantID
}

func call(t *testing.T, client *http.Client, method, url, token, contentType, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(raw)
}

func decodeData(t *testing.T, body string, out any) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
