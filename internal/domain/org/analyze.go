package org

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Analyzer evaluates salary bands and reporting line depth over one immutable
// employee set. Results are computed on first use and shared by later callers.
type Analyzer struct {
	set    *EmployeeSet
	index  *Index
	policy Policy

	salaryOnce    sync.Once
	salaryResults []SalaryResult

	linesOnce sync.Once
	lines     []ReportingLineResult
	linesErr  error
}

func NewAnalyzer(set *EmployeeSet, policy Policy) (*Analyzer, error) {
	if set == nil {
		return nil, fmt.Errorf("employee set is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("analyzer initialized", "employees", set.Len(), "policy", policy.String())
	return &Analyzer{
		set:    set,
		index:  BuildIndex(set),
		policy: policy,
	}, nil
}

func (a *Analyzer) Policy() Policy {
	return a.policy
}

func (a *Analyzer) EmployeeCount() int {
	return a.set.Len()
}

func (a *Analyzer) Root() (Employee, bool) {
	for _, emp := range a.set.Employees() {
		if emp.IsRoot() {
			return emp, true
		}
	}
	return Employee{}, false
}

func (a *Analyzer) DirectSubordinates(managerID string) []Employee {
	return a.index.Subordinates(managerID)
}

// SalaryResults evaluates every employee that has at least one direct subordinate.
// Leaf employees produce no result.
func (a *Analyzer) SalaryResults() []SalaryResult {
	a.salaryOnce.Do(func() {
		results := make([]SalaryResult, 0, len(a.index.managers))
		for _, manager := range a.set.Employees() {
			subs := a.index.subordinates[manager.ID]
			if len(subs) == 0 {
				continue
			}
			results = append(results, evaluateSalary(manager, subs, a.policy))
		}
		a.salaryResults = results
	})
	out := make([]SalaryResult, len(a.salaryResults))
	copy(out, a.salaryResults)
	return out
}

func evaluateSalary(manager Employee, subordinates []Employee, policy Policy) SalaryResult {
	total := decimal.Zero
	for _, sub := range subordinates {
		total = total.Add(decimal.NewFromFloat(sub.Salary))
	}
	average := total.Div(decimal.NewFromInt(int64(len(subordinates))))
	minExpected := policy.minExpected(average)
	maxExpected := policy.maxExpected(average)
	actual := decimal.NewFromFloat(manager.Salary)

	status := StatusWithinRange
	deviation := decimal.Zero
	switch {
	case actual.LessThan(minExpected):
		status = StatusUnderpaid
		deviation = minExpected.Sub(actual)
	case actual.GreaterThan(maxExpected):
		status = StatusOverpaid
		deviation = actual.Sub(maxExpected)
	}

	return SalaryResult{
		Manager:            manager,
		SubordinateCount:   len(subordinates),
		AverageSubordinate: average.InexactFloat64(),
		ActualSalary:       manager.Salary,
		MinExpected:        minExpected.InexactFloat64(),
		MaxExpected:        maxExpected.InexactFloat64(),
		Status:             status,
		DeviationAmount:    deviation.InexactFloat64(),
	}
}

func (a *Analyzer) Underpaid() []SalaryResult {
	return filterSalary(a.SalaryResults(), StatusUnderpaid)
}

func (a *Analyzer) Overpaid() []SalaryResult {
	return filterSalary(a.SalaryResults(), StatusOverpaid)
}

func filterSalary(results []SalaryResult, status SalaryStatus) []SalaryResult {
	var out []SalaryResult
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// ReportingLines measures every non-root employee's distance to the root.
// A cycle or dangling manager aborts the whole computation with a *StructuralError.
func (a *Analyzer) ReportingLines() ([]ReportingLineResult, error) {
	a.linesOnce.Do(func() {
		maxAllowed := a.policy.MaxReportingDepth
		results := make([]ReportingLineResult, 0, a.set.Len())
		for _, emp := range a.set.Employees() {
			if emp.IsRoot() {
				continue
			}
			walk := walkChain(a.set, emp, 0)
			switch walk.End {
			case chainCycle:
				a.linesErr = &StructuralError{Kind: KindCycle, EmployeeID: emp.ID, ManagerID: walk.At}
				return
			case chainMissing:
				a.linesErr = &StructuralError{Kind: KindMissingManager, EmployeeID: emp.ID, ManagerID: walk.At}
				return
			}
			results = append(results, ReportingLineResult{
				Employee:  emp,
				Length:    walk.Steps,
				MaxLength: maxAllowed,
				Excess:    max(0, walk.Steps-maxAllowed),
			})
		}
		a.lines = results
	})
	if a.linesErr != nil {
		return nil, a.linesErr
	}
	out := make([]ReportingLineResult, len(a.lines))
	copy(out, a.lines)
	return out, nil
}

func (a *Analyzer) LongReportingLines() ([]ReportingLineResult, error) {
	lines, err := a.ReportingLines()
	if err != nil {
		return nil, err
	}
	var out []ReportingLineResult
	for _, line := range lines {
		if line.TooLong() {
			out = append(out, line)
		}
	}
	return out, nil
}

func (a *Analyzer) Run() (Statistics, error) {
	start := time.Now()
	salaries := a.SalaryResults()
	lines, err := a.ReportingLines()
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalEmployees: a.set.Len(),
		TotalManagers:  len(salaries),
		AnalyzedAt:     start.UTC(),
	}
	for _, r := range salaries {
		switch r.Status {
		case StatusUnderpaid:
			stats.UnderpaidManagers++
		case StatusOverpaid:
			stats.OverpaidManagers++
		}
	}
	for _, line := range lines {
		if line.TooLong() {
			stats.LongReportingLines++
		}
		stats.MaxReportingDepth = max(stats.MaxReportingDepth, line.Length)
	}
	stats.ExecutionTime = time.Since(start)

	slog.Info("org analysis completed",
		"employees", stats.TotalEmployees,
		"managers", stats.TotalManagers,
		"underpaid", stats.UnderpaidManagers,
		"overpaid", stats.OverpaidManagers,
		"longLines", stats.LongReportingLines,
		"durationMs", stats.ExecutionTime.Milliseconds(),
	)
	return stats, nil
}
