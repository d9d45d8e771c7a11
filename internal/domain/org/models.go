package org

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Employee struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Salary    float64 `json:"salary"`
	ManagerID string  `json:"managerId,omitempty"`
}

// NewEmployee trims its inputs and rejects anything that could not describe a
// real employee. A blank managerID marks the employee as the root of the hierarchy.
func NewEmployee(id, firstName, lastName string, salary float64, managerID string) (Employee, error) {
	emp := Employee{
		ID:        strings.TrimSpace(id),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Salary:    salary,
		ManagerID: strings.TrimSpace(managerID),
	}
	if err := emp.validate(); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (e Employee) validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEmployee)
	}
	if strings.TrimSpace(e.FirstName) == "" {
		return fmt.Errorf("%w: first name is required for %s", ErrInvalidEmployee, e.ID)
	}
	if strings.TrimSpace(e.LastName) == "" {
		return fmt.Errorf("%w: last name is required for %s", ErrInvalidEmployee, e.ID)
	}
	if math.IsNaN(e.Salary) || math.IsInf(e.Salary, 0) {
		return fmt.Errorf("%w: salary must be a finite number for %s", ErrInvalidEmployee, e.ID)
	}
	if e.Salary < 0 {
		return fmt.Errorf("%w: salary cannot be negative for %s", ErrInvalidEmployee, e.ID)
	}
	return nil
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e Employee) IsRoot() bool {
	return strings.TrimSpace(e.ManagerID) == ""
}

func (e Employee) String() string {
	managerID := e.ManagerID
	if managerID == "" {
		managerID = "N/A"
	}
	return fmt.Sprintf("Employee{id=%q, name=%q, salary=%.2f, managerId=%q}", e.ID, e.FullName(), e.Salary, managerID)
}

// EmployeeSet is the immutable id-keyed input of validation and analysis.
// Iteration follows insertion order so findings and results are deterministic.
type EmployeeSet struct {
	order []string
	byID  map[string]Employee
}

func NewEmployeeSet(employees ...Employee) (*EmployeeSet, error) {
	set := &EmployeeSet{
		order: make([]string, 0, len(employees)),
		byID:  make(map[string]Employee, len(employees)),
	}
	for _, emp := range employees {
		emp.ID = strings.TrimSpace(emp.ID)
		emp.ManagerID = strings.TrimSpace(emp.ManagerID)
		if err := emp.validate(); err != nil {
			return nil, err
		}
		if _, exists := set.byID[emp.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmployee, emp.ID)
		}
		set.order = append(set.order, emp.ID)
		set.byID[emp.ID] = emp
	}
	return set, nil
}

func (s *EmployeeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *EmployeeSet) Get(id string) (Employee, bool) {
	if s == nil {
		return Employee{}, false
	}
	emp, ok := s.byID[id]
	return emp, ok
}

func (s *EmployeeSet) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *EmployeeSet) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *EmployeeSet) Employees() []Employee {
	if s == nil {
		return nil
	}
	out := make([]Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *EmployeeSet) Roots() []Employee {
	var roots []Employee
	for _, emp := range s.Employees() {
		if emp.IsRoot() {
			roots = append(roots, emp)
		}
	}
	return roots
}

type SalaryStatus string

const (
	StatusUnderpaid   SalaryStatus = "UNDERPAID"
	StatusWithinRange SalaryStatus = "WITHIN_RANGE"
	StatusOverpaid    SalaryStatus = "OVERPAID"
)

type SalaryResult struct {
	Manager            Employee     `json:"manager"`
	SubordinateCount   int          `json:"subordinateCount"`
	AverageSubordinate float64      `json:"averageSubordinateSalary"`
	ActualSalary       float64      `json:"actualSalary"`
	MinExpected        float64      `json:"minExpectedSalary"`
	MaxExpected        float64      `json:"maxExpectedSalary"`
	Status             SalaryStatus `json:"status"`
	DeviationAmount    float64      `json:"deviation"`
}

// Deviation is how far the salary sits outside the band; zero inside it.
func (r SalaryResult) Deviation() float64 {
	return r.DeviationAmount
}

func (r SalaryResult) Compliant() bool {
	return r.Status == StatusWithinRange
}

type ReportingLineResult struct {
	Employee  Employee `json:"employee"`
	Length    int      `json:"reportingLineLength"`
	MaxLength int      `json:"maxAllowedLength"`
	Excess    int      `json:"excessLength"`
}

func (r ReportingLineResult) TooLong() bool {
	return r.Excess > 0
}

type Statistics struct {
	TotalEmployees     int           `json:"totalEmployees"`
	TotalManagers      int           `json:"totalManagers"`
	UnderpaidManagers  int           `json:"underpaidManagers"`
	OverpaidManagers   int           `json:"overpaidManagers"`
	LongReportingLines int           `json:"longReportingLines"`
	MaxReportingDepth  int           `json:"maxReportingDepth"`
	ExecutionTime      time.Duration `json:"executionTimeNs"`
	AnalyzedAt         time.Time     `json:"analyzedAt"`
}

func (s Statistics) TotalIssues() int {
	return s.UnderpaidManagers + s.OverpaidManagers + s.LongReportingLines
}

func (s Statistics) HasIssues() bool {
	return s.TotalIssues() > 0
}

// ComplianceRate is the percentage of managers paid within their band.
func (s Statistics) ComplianceRate() float64 {
	if s.TotalManagers == 0 {
		return 100
	}
	compliant := s.TotalManagers - s.UnderpaidManagers - s.OverpaidManagers
	return float64(compliant) * 100 / float64(s.TotalManagers)
}

type AuditRun struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenantId"`
	Status      string         `json:"status"`
	Policy      Policy         `json:"policy"`
	Details     map[string]any `json:"details,omitempty"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}
