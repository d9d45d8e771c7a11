package org

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

type Finding struct {
	Severity    string   `json:"severity"`
	Kind        string   `json:"kind"`
	EmployeeIDs []string `json:"employeeIds,omitempty"`
	RelatedID   string   `json:"relatedId,omitempty"`
	Message     string   `json:"message"`
}

func (f Finding) String() string {
	return f.Message
}

type ValidationResult struct {
	errors   []Finding
	warnings []Finding
}

func NewValidationResult(findings ...Finding) ValidationResult {
	var res ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityError {
			res.errors = append(res.errors, f)
		} else {
			res.warnings = append(res.warnings, f)
		}
	}
	return res
}

func (r ValidationResult) Valid() bool {
	return len(r.errors) == 0
}

func (r ValidationResult) HasWarnings() bool {
	return len(r.warnings) > 0
}

func (r ValidationResult) Errors() []Finding {
	out := make([]Finding, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r ValidationResult) Warnings() []Finding {
	out := make([]Finding, len(r.warnings))
	copy(out, r.warnings)
	return out
}

func (r ValidationResult) ErrorCount() int {
	return len(r.errors)
}

func (r ValidationResult) WarningCount() int {
	return len(r.warnings)
}

func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	merged := ValidationResult{
		errors:   append(r.Errors(), other.errors...),
		warnings: append(r.Warnings(), other.warnings...),
	}
	return merged
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("ValidationResult{valid=%t, errors=%d, warnings=%d}", r.Valid(), len(r.errors), len(r.warnings))
}

// Check inspects an employee set and reports its findings without side effects.
type Check func(set *EmployeeSet) []Finding

// Checks lists the structural and data-quality checks in the order Validate runs them.
var Checks = []Check{
	CheckRoot,
	CheckManagerReferences,
	CheckCycles,
	CheckConnectivity,
	CheckDataQuality,
}

// Validate runs every check so that a single pass surfaces as many problems as possible.
// Only an empty set short-circuits.
func Validate(set *EmployeeSet) ValidationResult {
	if set.Len() == 0 {
		return NewValidationResult(Finding{
			Severity: SeverityError,
			Kind:     KindNoEmployees,
			Message:  "No employees found in the data",
		})
	}

	var findings []Finding
	for _, check := range Checks {
		findings = append(findings, check(set)...)
	}
	result := NewValidationResult(findings...)

	if result.Valid() {
		slog.Info("org data validation passed", "employees", set.Len(), "warnings", result.WarningCount())
	} else {
		slog.Warn("org data validation failed", "employees", set.Len(), "errors", result.ErrorCount(), "warnings", result.WarningCount())
	}
	return result
}

func CheckRoot(set *EmployeeSet) []Finding {
	roots := set.Roots()
	switch {
	case len(roots) == 0:
		return []Finding{{
			Severity: SeverityError,
			Kind:     KindNoRoot,
			Message:  "No CEO found (employee with no manager)",
		}}
	case len(roots) > 1:
		ids := make([]string, 0, len(roots))
		labels := make([]string, 0, len(roots))
		for _, root := range roots {
			ids = append(ids, root.ID)
			labels = append(labels, fmt.Sprintf("%s (%s)", root.ID, root.FullName()))
		}
		return []Finding{{
			Severity:    SeverityError,
			Kind:        KindMultipleRoots,
			EmployeeIDs: ids,
			Message:     "Multiple CEOs found: " + strings.Join(labels, ", "),
		}}
	}
	return nil
}

func CheckManagerReferences(set *EmployeeSet) []Finding {
	var findings []Finding
	for _, emp := range set.Employees() {
		if emp.IsRoot() || set.Contains(emp.ManagerID) {
			continue
		}
		findings = append(findings, Finding{
			Severity:    SeverityError,
			Kind:        KindMissingManager,
			EmployeeIDs: []string{emp.ID},
			RelatedID:   emp.ManagerID,
			Message:     fmt.Sprintf("Employee %s (%s) references non-existent manager: %s", emp.ID, emp.FullName(), emp.ManagerID),
		})
	}
	return findings
}

// CheckCycles reports every employee that is its own ancestor. A dangling manager
// ends the walk quietly; CheckManagerReferences owns that finding.
func CheckCycles(set *EmployeeSet) []Finding {
	var findings []Finding
	for _, emp := range set.Employees() {
		walk := walkChain(set, emp, 0)
		if walk.End != chainCycle {
			continue
		}
		findings = append(findings, Finding{
			Severity:    SeverityError,
			Kind:        KindCycle,
			EmployeeIDs: []string{emp.ID},
			RelatedID:   walk.At,
			Message:     fmt.Sprintf("Circular reference detected starting from employee %s (%s)", emp.ID, emp.FullName()),
		})
	}
	return findings
}

// CheckConnectivity warns about employees the unique root cannot reach.
// Without exactly one root there is nothing to measure against.
func CheckConnectivity(set *EmployeeSet) []Finding {
	roots := set.Roots()
	if len(roots) != 1 {
		return nil
	}
	reachable := BuildIndex(set).Reachable(roots[0].ID)

	var findings []Finding
	for _, emp := range set.Employees() {
		if _, ok := reachable[emp.ID]; ok {
			continue
		}
		findings = append(findings, Finding{
			Severity:    SeverityWarning,
			Kind:        KindDisconnected,
			EmployeeIDs: []string{emp.ID},
			RelatedID:   roots[0].ID,
			Message:     fmt.Sprintf("Employee %s (%s) is not connected to the CEO hierarchy", emp.ID, emp.FullName()),
		})
	}
	return findings
}

func CheckDataQuality(set *EmployeeSet) []Finding {
	var findings []Finding
	for _, emp := range set.Employees() {
		if emp.Salary == 0 {
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Kind:        KindZeroSalary,
				EmployeeIDs: []string{emp.ID},
				Message:     fmt.Sprintf("Employee %s (%s) has zero salary", emp.ID, emp.FullName()),
			})
		}
		if emp.Salary > HighSalaryThreshold {
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Kind:        KindHighSalary,
				EmployeeIDs: []string{emp.ID},
				Message:     fmt.Sprintf("Employee %s (%s) has unusually high salary: %.2f", emp.ID, emp.FullName(), emp.Salary),
			})
		}
	}
	return findings
}

func (r ValidationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Valid    bool      `json:"valid"`
		Errors   []Finding `json:"errors"`
		Warnings []Finding `json:"warnings"`
	}{
		Valid:    r.Valid(),
		Errors:   r.Errors(),
		Warnings: r.Warnings(),
	})
}
