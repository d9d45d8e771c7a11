package org

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmployee     = errors.New("invalid employee")
	ErrDuplicateEmployee   = errors.New("duplicate employee id")
	ErrInvalidPolicy       = errors.New("invalid analysis policy")
	ErrStructuralInvariant = errors.New("structural invariant violated during analysis")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrAuditRunNotFound    = errors.New("audit run not found")
)

// StructuralError is raised by the analyzer when it meets a cycle or a dangling
// manager reference that validation should have rejected.
type StructuralError struct {
	Kind       string
	EmployeeID string
	ManagerID  string
}

func (e *StructuralError) Error() string {
	switch e.Kind {
	case KindCycle:
		return fmt.Sprintf("%s: circular reference detected for employee %s", ErrStructuralInvariant, e.EmployeeID)
	case KindMissingManager:
		return fmt.Sprintf("%s: manager %s not found for employee %s", ErrStructuralInvariant, e.ManagerID, e.EmployeeID)
	default:
		return fmt.Sprintf("%s: %s at employee %s", ErrStructuralInvariant, e.Kind, e.EmployeeID)
	}
}

func (e *StructuralError) Unwrap() error {
	return ErrStructuralInvariant
}
