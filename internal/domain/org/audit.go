package org

import "errors"

type Outcome int

const (
	OutcomeClean            Outcome = 0
	OutcomeIssuesFound      Outcome = 1
	OutcomeValidationFailed Outcome = 4
)

type AuditOptions struct {
	// Strict treats validation warnings as failures.
	Strict bool
	// ValidateOnly stops after structural validation.
	ValidateOnly bool
}

// Report is everything one audit produced, ready for a renderer.
type Report struct {
	Policy          Policy                `json:"policy"`
	Validation      ValidationResult      `json:"validation"`
	Salaries        []SalaryResult        `json:"salaries,omitempty"`
	Underpaid       []SalaryResult        `json:"underpaid,omitempty"`
	Overpaid        []SalaryResult        `json:"overpaid,omitempty"`
	ReportingLines  []ReportingLineResult `json:"reportingLines,omitempty"`
	LongLines       []ReportingLineResult `json:"longReportingLines,omitempty"`
	Stats           *Statistics           `json:"stats,omitempty"`
	Analyzed        bool                  `json:"analyzed"`
	StrictViolation bool                  `json:"strictViolation,omitempty"`
}

func (r *Report) Outcome() Outcome {
	if !r.Validation.Valid() || r.StrictViolation {
		return OutcomeValidationFailed
	}
	if r.Stats != nil && r.Stats.HasIssues() {
		return OutcomeIssuesFound
	}
	return OutcomeClean
}

// Audit validates the set and, when it is structurally sound, analyses it.
// The returned error is reserved for engine invariant violations and bad policy.
func Audit(set *EmployeeSet, policy Policy, opts AuditOptions) (*Report, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	report := &Report{Policy: policy, Validation: Validate(set)}
	if !report.Validation.Valid() {
		return report, nil
	}
	if opts.Strict && report.Validation.HasWarnings() {
		report.StrictViolation = true
		return report, nil
	}
	if opts.ValidateOnly {
		return report, nil
	}

	analyzer, err := NewAnalyzer(set, policy)
	if err != nil {
		return nil, err
	}
	stats, err := analyzer.Run()
	if err != nil {
		return nil, err
	}
	lines, err := analyzer.ReportingLines()
	if err != nil {
		return nil, err
	}
	long, err := analyzer.LongReportingLines()
	if err != nil {
		return nil, err
	}

	report.Salaries = analyzer.SalaryResults()
	report.Underpaid = analyzer.Underpaid()
	report.Overpaid = analyzer.Overpaid()
	report.ReportingLines = lines
	report.LongLines = long
	report.Stats = &stats
	report.Analyzed = true
	return report, nil
}

// IsStructural reports whether err came from an analysis run on a broken hierarchy.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructuralInvariant)
}
