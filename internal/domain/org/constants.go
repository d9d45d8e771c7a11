package org

const (
	SeverityError   = "error"
	SeverityWarning = "warning"

	KindNoEmployees    = "no_employees"
	KindNoRoot         = "no_root"
	KindMultipleRoots  = "multiple_roots"
	KindMissingManager = "missing_manager"
	KindCycle          = "cycle"
	KindDisconnected   = "disconnected"
	KindZeroSalary     = "zero_salary"
	KindHighSalary     = "high_salary"

	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusInvalid   = "invalid"
	RunStatusFailed    = "failed"

	// Salaries above this are reported as suspicious but never block analysis.
	HighSalaryThreshold = 10_000_000

	DefaultMinAbovePct       = 0.20
	DefaultMaxAbovePct       = 0.50
	DefaultMaxReportingDepth = 4
)
