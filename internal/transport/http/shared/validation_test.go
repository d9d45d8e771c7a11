package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"orgaudit/internal/domain/org"
)

func TestValidatorPolicyOverrides(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/?minPct=10&maxPct=60&maxDepth=3", nil)
	v := NewValidator()
	policy := v.Policy(req, org.DefaultPolicy())
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
	if policy.MinAbovePct != 0.10 || policy.MaxAbovePct != 0.60 || policy.MaxReportingDepth != 3 {
		t.Fatalf("unexpected policy: %+v", policy)
	}
}

func TestValidatorPolicyKeepsDefaultsWithoutQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	v := NewValidator()
	if got := v.Policy(req, org.DefaultPolicy()); got != org.DefaultPolicy() {
		t.Fatalf("expected default policy, got %+v", got)
	}
}

func TestValidatorPolicyRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "not a number", query: "minPct=abc", field: "minPct"},
		{name: "nan", query: "minPct=NaN", field: "minPct"},
		{name: "infinite", query: "maxPct=Inf", field: "maxPct"},
		{name: "depth not an int", query: "maxDepth=2.5", field: "maxDepth"},
		{name: "min above max", query: "minPct=80&maxPct=20", field: "policy"},
		{name: "zero depth", query: "maxDepth=0", field: "policy"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/?"+tc.query, nil)
			v := NewValidator()
			policy := v.Policy(req, org.DefaultPolicy())
			issues := v.Issues()
			if len(issues) != 1 || issues[0].Field != tc.field {
				t.Fatalf("expected one %s issue, got %+v", tc.field, issues)
			}
			if policy != org.DefaultPolicy() {
				t.Fatalf("expected base policy on error, got %+v", policy)
			}
		})
	}
}

func TestValidatorRejectWritesEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("clientId", " ", "is required")
	v.Enum("format", "xml", []string{"text", "json"}, "must be text or json")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	issues := v.Issues()
	if issues[0].Field != "clientId" || issues[1].Field != "format" {
		t.Fatalf("expected sorted issues, got %+v", issues)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	page := ParsePagination(req, 20, 100)
	if page.Limit != 100 || page.Offset != 20 {
		t.Fatalf("unexpected pagination: %+v", page)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil)
	page = ParsePagination(req, 20, 100)
	if page.Limit != 20 || page.Offset != 0 {
		t.Fatalf("unexpected fallback pagination: %+v", page)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 5, Pagination{Limit: 2, Offset: 2})
	if !page.HasMore || page.Total != 5 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	last := NewPage[string](nil, 4, Pagination{Limit: 2, Offset: 4})
	if last.HasMore || last.Items == nil {
		t.Fatalf("expected empty final page with non-nil items, got %+v", last)
	}
}
