package org

import (
	"errors"
	"math"
	"testing"
)

func TestNewPolicyValidation(t *testing.T) {
	cases := []struct {
		name  string
		min   float64
		max   float64
		depth int
		ok    bool
	}{
		{"defaults", 0.2, 0.5, 4, true},
		{"zero band", 0, 0, 1, true},
		{"upper limits", 1, 2, 10, true},
		{"negative min", -0.1, 0.5, 4, false},
		{"min above one", 1.1, 1.5, 4, false},
		{"max above two", 0.2, 2.1, 4, false},
		{"min exceeds max", 0.6, 0.5, 4, false},
		{"zero depth", 0.2, 0.5, 0, false},
		{"nan min", math.NaN(), 0.5, 4, false},
		{"nan max", 0.2, math.NaN(), 4, false},
		{"infinite max", 0.2, math.Inf(1), 4, false},
		{"negative infinite min", math.Inf(-1), 0.5, 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(tc.min, tc.max, tc.depth)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidPolicy) {
				t.Fatalf("expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestPolicyExpectedSalaries(t *testing.T) {
	p := DefaultPolicy()
	if got := p.MinExpected(50000); got != 60000 {
		t.Fatalf("expected min 60000, got %v", got)
	}
	if got := p.MaxExpected(50000); got != 75000 {
		t.Fatalf("expected max 75000, got %v", got)
	}
	if p.String() != "minSalary=20%, maxSalary=50%, maxReportingLine=4" {
		t.Fatalf("unexpected policy string: %s", p.String())
	}
}

func TestAuditRejectsNonFinitePolicy(t *testing.T) {
	set := mustSet(t,
		emp(t, "1", "Ann", "Root", 100000, ""),
		emp(t, "2", "Bob", "Report", 50000, "1"),
	)
	policy := Policy{MinAbovePct: math.NaN(), MaxAbovePct: 0.5, MaxReportingDepth: 4}
	if _, err := Audit(set, policy, AuditOptions{}); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestPolicyKeyKeepsFractions(t *testing.T) {
	a := Policy{MinAbovePct: 0.20, MaxAbovePct: 0.5, MaxReportingDepth: 4}
	b := Policy{MinAbovePct: 0.204, MaxAbovePct: 0.5, MaxReportingDepth: 4}
	if a.String() != b.String() {
		t.Fatalf("expected equal display strings, got %q and %q", a.String(), b.String())
	}
	if a.Key() == b.Key() {
		t.Fatalf("expected distinct keys, both %q", a.Key())
	}
	if a.Key() != DefaultPolicy().Key() {
		t.Fatalf("expected default key %q, got %q", DefaultPolicy().Key(), a.Key())
	}
}
