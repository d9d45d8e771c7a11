package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"orgaudit/internal/domain/org"
)

const (
	expectedColumns = 5
	colID           = 0
	colFirstName    = 1
	colLastName     = 2
	colSalary       = 3
	colManagerID    = 4
)

// ParseError reports a malformed input. Line is 1-based; zero means the error
// is not tied to a line.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func ParseFile(path string) (*org.EmployeeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Msg: "failed to read CSV file: " + path, Err: err}
	}
	return ParseBytes(data)
}

func Parse(r io.Reader) (*org.EmployeeSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Msg: "failed to read CSV input", Err: err}
	}
	return ParseBytes(data)
}

// ParseBytes reads "Id,firstName,lastName,salary,managerId" rows. Extra
// columns are ignored, values are trimmed and blank lines skipped.
func ParseBytes(data []byte) (*org.EmployeeSet, error) {
	decoded, encoding, err := Decode(data)
	if err != nil {
		return nil, &ParseError{Msg: "unsupported encoding", Err: err}
	}
	if encoding != "utf-8" {
		slog.Debug("csv input decoded", "encoding", encoding)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Msg: "CSV file is empty"}
	}
	if err != nil {
		return nil, &ParseError{Line: 1, Msg: "failed to read header row", Err: err}
	}
	if len(header) < expectedColumns {
		return nil, &ParseError{Line: 1, Msg: fmt.Sprintf("Invalid header: expected at least %d columns", expectedColumns)}
	}

	var employees []org.Employee
	seen := map[string]struct{}{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line, _ := reader.FieldPos(0)
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{Line: line, Msg: "malformed CSV row", Err: err}
		}
		if blankRecord(record) {
			continue
		}

		emp, err := parseRecord(record, line)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[emp.ID]; dup {
			return nil, &ParseError{Line: line, Msg: "Duplicate employee ID: " + emp.ID, Err: org.ErrDuplicateEmployee}
		}
		seen[emp.ID] = struct{}{}
		employees = append(employees, emp)
	}

	set, err := org.NewEmployeeSet(employees...)
	if err != nil {
		return nil, &ParseError{Msg: err.Error(), Err: err}
	}
	return set, nil
}

func parseRecord(record []string, line int) (org.Employee, error) {
	if len(record) < expectedColumns {
		return org.Employee{}, &ParseError{Line: line, Msg: fmt.Sprintf("Expected %d columns but found %d", expectedColumns, len(record))}
	}

	id := strings.TrimSpace(record[colID])
	firstName := strings.TrimSpace(record[colFirstName])
	lastName := strings.TrimSpace(record[colLastName])
	rawSalary := strings.TrimSpace(record[colSalary])
	managerID := strings.TrimSpace(record[colManagerID])

	switch {
	case id == "":
		return org.Employee{}, &ParseError{Line: line, Msg: "Employee ID cannot be empty"}
	case firstName == "":
		return org.Employee{}, &ParseError{Line: line, Msg: "First name cannot be empty"}
	case lastName == "":
		return org.Employee{}, &ParseError{Line: line, Msg: "Last name cannot be empty"}
	}

	salary, err := strconv.ParseFloat(rawSalary, 64)
	if err != nil {
		return org.Employee{}, &ParseError{Line: line, Msg: "Invalid salary value: " + rawSalary, Err: err}
	}

	emp, err := org.NewEmployee(id, firstName, lastName, salary, managerID)
	if err != nil {
		return org.Employee{}, &ParseError{Line: line, Msg: err.Error(), Err: err}
	}
	return emp, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
