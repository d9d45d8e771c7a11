package org

import (
	"strconv"
	"testing"
)

func emp(t *testing.T, id, first, last string, salary float64, managerID string) Employee {
	t.Helper()
	e, err := NewEmployee(id, first, last, salary, managerID)
	if err != nil {
		t.Fatalf("employee %s: %v", id, err)
	}
	return e
}

func mustSet(t *testing.T, employees ...Employee) *EmployeeSet {
	t.Helper()
	set, err := NewEmployeeSet(employees...)
	if err != nil {
		t.Fatalf("employee set: %v", err)
	}
	return set
}

func mustAnalyzer(t *testing.T, set *EmployeeSet, policy Policy) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(set, policy)
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	return a
}

// chain builds CEO "1" plus a straight line of n managers below it, ids "2".."n+1".
func chain(t *testing.T, n int) *EmployeeSet {
	t.Helper()
	employees := []Employee{emp(t, "1", "CEO", "Boss", 200000, "")}
	for i := 2; i <= n+1; i++ {
		id := strconv.Itoa(i)
		employees = append(employees, emp(t, id, "Emp", id, 50000, strconv.Itoa(i-1)))
	}
	return mustSet(t, employees...)
}
