package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"orgaudit/internal/domain/org"
)

func auditFixture(t *testing.T, ceoSalary, managerSalary float64) *org.Report {
	t.Helper()
	var employees []org.Employee
	add := func(id, first, last string, salary float64, managerID string) {
		emp, err := org.NewEmployee(id, first, last, salary, managerID)
		if err != nil {
			t.Fatalf("employee: %v", err)
		}
		employees = append(employees, emp)
	}
	add("1", "Grace", "Hopper", ceoSalary, "")
	add("2", "Martin", "Chekov", managerSalary, "1")
	add("3", "Bob", "Ronstad", 40000, "2")
	add("4", "Alice", "Hasacat", 60000, "2")
	add("5", "Brett", "Hardleaf", 34000, "4")
	add("6", "Deep", "Line", 30000, "5")
	add("7", "Deeper", "Line", 30000, "6")

	set, err := org.NewEmployeeSet(employees...)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	rep, err := org.Audit(set, org.DefaultPolicy(), org.AuditOptions{})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	return rep
}

func TestWriteTextSections(t *testing.T) {
	rep := auditFixture(t, 80000, 55000)
	var buf bytes.Buffer
	if err := WriteText(&buf, rep, TextOptions{Location: time.UTC}); err != nil {
		t.Fatalf("write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"ORGANIZATION STRUCTURE ANALYSIS REPORT",
		"CONFIGURATION",
		"Minimum manager salary: 20% above subordinate average",
		"Maximum reporting line depth: 4 managers to CEO",
		"MANAGERS EARNING LESS THAN REQUIRED",
		"Martin Chekov",
		"55,000.00",
		"MANAGERS EARNING MORE THAN ALLOWED",
		"EMPLOYEES WITH REPORTING LINE TOO LONG",
		"Deeper Line",
		"SUMMARY STATISTICS",
		"ISSUE(S) FOUND",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > lineWidth {
			t.Fatalf("line exceeds %d columns: %q", lineWidth, line)
		}
	}
}

func TestWriteTextRequiresAnalysis(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, &org.Report{}, TextOptions{}); err == nil {
		t.Fatal("expected error for unanalysed report")
	}
}

func TestVerdict(t *testing.T) {
	if got := Verdict(org.Statistics{}); !strings.Contains(got, "NO ISSUES FOUND") {
		t.Fatalf("unexpected verdict %q", got)
	}
	if got := Verdict(org.Statistics{UnderpaidManagers: 2, LongReportingLines: 1}); !strings.Contains(got, "3 ISSUE(S) FOUND") {
		t.Fatalf("unexpected verdict %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("Bartholomew Longname-Smythe", 12); got != "Bartholom..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("Zoë Ångström Øster", 6); got != "Zoë..." {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}

func TestWriteValidation(t *testing.T) {
	emp, err := org.NewEmployee("1", "Ada", "Lovelace", 0, "9")
	if err != nil {
		t.Fatalf("employee: %v", err)
	}
	set, err := org.NewEmployeeSet(emp)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteValidation(&buf, org.Validate(set)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Data validation failed:") || !strings.Contains(out, "  ERROR: ") {
		t.Fatalf("expected errors, got:\n%s", out)
	}
	if !strings.Contains(out, "  WARNING: ") {
		t.Fatalf("expected zero-salary warning, got:\n%s", out)
	}
}

func TestWritePDF(t *testing.T) {
	rep := auditFixture(t, 80000, 55000)
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep, PDFOptions{Title: "Acme Org Audit", Location: time.UTC}); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", buf.Bytes()[:8])
	}
}

func TestWritePDFForInvalidData(t *testing.T) {
	emp, err := org.NewEmployee("1", "José", "Núñez", 100, "2")
	if err != nil {
		t.Fatalf("employee: %v", err)
	}
	set, err := org.NewEmployeeSet(emp)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	rep, err := org.Audit(set, org.DefaultPolicy(), org.AuditOptions{})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep, PDFOptions{}); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected pdf output")
	}
}
