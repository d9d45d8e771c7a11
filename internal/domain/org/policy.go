package org

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Policy holds the salary band and reporting depth limits an audit checks against.
// Percentages are fractions: 0.20 means 20% above the subordinate average.
type Policy struct {
	MinAbovePct       float64 `json:"minAbovePct" yaml:"min_above_pct"`
	MaxAbovePct       float64 `json:"maxAbovePct" yaml:"max_above_pct"`
	MaxReportingDepth int     `json:"maxReportingDepth" yaml:"max_reporting_depth"`
}

func DefaultPolicy() Policy {
	return Policy{
		MinAbovePct:       DefaultMinAbovePct,
		MaxAbovePct:       DefaultMaxAbovePct,
		MaxReportingDepth: DefaultMaxReportingDepth,
	}
}

func NewPolicy(minAbovePct, maxAbovePct float64, maxReportingDepth int) (Policy, error) {
	p := Policy{
		MinAbovePct:       minAbovePct,
		MaxAbovePct:       maxAbovePct,
		MaxReportingDepth: maxReportingDepth,
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if !finite(p.MinAbovePct) || !finite(p.MaxAbovePct) {
		return fmt.Errorf("%w: salary percentages must be finite numbers: min=%v max=%v", ErrInvalidPolicy, p.MinAbovePct, p.MaxAbovePct)
	}
	if p.MinAbovePct < 0 || p.MinAbovePct > 1 {
		return fmt.Errorf("%w: min salary percentage must be between 0 and 1: %v", ErrInvalidPolicy, p.MinAbovePct)
	}
	if p.MaxAbovePct < 0 || p.MaxAbovePct > 2 {
		return fmt.Errorf("%w: max salary percentage must be between 0 and 2: %v", ErrInvalidPolicy, p.MaxAbovePct)
	}
	if p.MinAbovePct > p.MaxAbovePct {
		return fmt.Errorf("%w: min salary percentage cannot exceed max: %v > %v", ErrInvalidPolicy, p.MinAbovePct, p.MaxAbovePct)
	}
	if p.MaxReportingDepth < 1 {
		return fmt.Errorf("%w: max reporting line length must be at least 1: %d", ErrInvalidPolicy, p.MaxReportingDepth)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Policy) MinExpected(average float64) float64 {
	return p.minExpected(decimal.NewFromFloat(average)).InexactFloat64()
}

func (p Policy) MaxExpected(average float64) float64 {
	return p.maxExpected(decimal.NewFromFloat(average)).InexactFloat64()
}

func (p Policy) minExpected(average decimal.Decimal) decimal.Decimal {
	return average.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(p.MinAbovePct)))
}

func (p Policy) maxExpected(average decimal.Decimal) decimal.Decimal {
	return average.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(p.MaxAbovePct)))
}

func (p Policy) String() string {
	return fmt.Sprintf("minSalary=%.0f%%, maxSalary=%.0f%%, maxReportingLine=%d",
		p.MinAbovePct*100, p.MaxAbovePct*100, p.MaxReportingDepth)
}

// Key identifies the policy by its exact values. String rounds for display and
// must not be used to tell policies apart.
func (p Policy) Key() string {
	return "min=" + strconv.FormatFloat(p.MinAbovePct, 'g', -1, 64) +
		",max=" + strconv.FormatFloat(p.MaxAbovePct, 'g', -1, 64) +
		",depth=" + strconv.Itoa(p.MaxReportingDepth)
}
