package org

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAuditCleanHierarchy(t *testing.T) {
	report, err := Audit(salarySet(t, 65000), DefaultPolicy(), AuditOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Analyzed || report.Stats == nil {
		t.Fatal("expected analysis to run")
	}
	if report.Outcome() != OutcomeClean {
		t.Fatalf("expected clean outcome, got %d", report.Outcome())
	}
	if len(report.Salaries) != 1 || len(report.ReportingLines) != 2 {
		t.Fatalf("unexpected result sizes: %d salaries, %d lines", len(report.Salaries), len(report.ReportingLines))
	}
}

func TestAuditIssuesFound(t *testing.T) {
	report, err := Audit(salarySet(t, 55000), DefaultPolicy(), AuditOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Outcome() != OutcomeIssuesFound || len(report.Underpaid) != 1 {
		t.Fatalf("expected underpaid issue, got outcome %d", report.Outcome())
	}
}

func TestAuditSkipsAnalysisOnErrors(t *testing.T) {
	set := mustSet(t,
		emp(t, "1", "CEO", "Boss", 1, ""),
		emp(t, "2", "A", "A", 1, "3"),
		emp(t, "3", "B", "B", 1, "2"),
	)
	report, err := Audit(set, DefaultPolicy(), AuditOptions{})
	if err != nil {
		t.Fatalf("invalid data must not surface as an engine error: %v", err)
	}
	if report.Analyzed || report.Outcome() != OutcomeValidationFailed {
		t.Fatalf("expected validation failure without analysis, got %+v", report)
	}
}

func TestAuditWarningsDoNotBlock(t *testing.T) {
	set := mustSet(t,
		emp(t, "1", "CEO", "Boss", 0, ""),
		emp(t, "2", "A", "A", 0, "1"),
	)
	report, err := Audit(set, DefaultPolicy(), AuditOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Analyzed {
		t.Fatal("warnings must not block analysis")
	}

	strict, err := Audit(set, DefaultPolicy(), AuditOptions{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strict.Analyzed || !strict.StrictViolation || strict.Outcome() != OutcomeValidationFailed {
		t.Fatalf("strict mode must fail on warnings, got %+v", strict)
	}
}

func TestAuditValidateOnly(t *testing.T) {
	report, err := Audit(salarySet(t, 55000), DefaultPolicy(), AuditOptions{ValidateOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Analyzed || report.Outcome() != OutcomeClean {
		t.Fatalf("expected validation only, got %+v", report)
	}
}

func TestReportJSONIncludesFindings(t *testing.T) {
	set := mustSet(t, emp(t, "1", "A", "A", 1, "2"))
	report, err := Audit(set, DefaultPolicy(), AuditOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !strings.Contains(string(raw), `"valid":false`) || !strings.Contains(string(raw), KindMissingManager) {
		t.Fatalf("unexpected payload: %s", raw)
	}
}
