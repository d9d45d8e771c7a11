package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"orgaudit/internal/domain/org"
)

const (
	lineWidth       = 80
	timestampLayout = "2006-01-02 15:04:05"
)

var (
	separator        = strings.Repeat("=", lineWidth)
	sectionSeparator = strings.Repeat("-", lineWidth)
)

// TextOptions controls rendering details that vary between callers.
type TextOptions struct {
	Location *time.Location
}

// WriteText renders an analysed report as the fixed-width console report.
func WriteText(w io.Writer, rep *org.Report, opts TextOptions) error {
	if rep == nil || !rep.Analyzed || rep.Stats == nil {
		return fmt.Errorf("report has no analysis results")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	out := &textWriter{w: bufio.NewWriter(w), p: message.NewPrinter(language.English)}
	stats := *rep.Stats

	out.line("")
	out.line(separator)
	out.line(center("ORGANIZATION STRUCTURE ANALYSIS REPORT"))
	out.line(separator)
	out.printf("  Analysis Date: %s\n", stats.AnalyzedAt.In(loc).Format(timestampLayout))
	out.printf("  Total Employees: %d\n", stats.TotalEmployees)
	out.line("")

	out.section("CONFIGURATION")
	out.printf("  Minimum manager salary: %.0f%% above subordinate average\n", rep.Policy.MinAbovePct*100)
	out.printf("  Maximum manager salary: %.0f%% above subordinate average\n", rep.Policy.MaxAbovePct*100)
	out.printf("  Maximum reporting line depth: %d managers to CEO\n", rep.Policy.MaxReportingDepth)
	out.line("")

	out.salarySection("MANAGERS EARNING LESS THAN REQUIRED", "Min Required", "Underpaid By", rep.Underpaid, func(r org.SalaryResult) float64 {
		return r.MinExpected
	})
	out.salarySection("MANAGERS EARNING MORE THAN ALLOWED", "Max Allowed", "Overpaid By", rep.Overpaid, func(r org.SalaryResult) float64 {
		return r.MaxExpected
	})

	out.section("EMPLOYEES WITH REPORTING LINE TOO LONG")
	if len(rep.LongLines) == 0 {
		out.line("  ✓ No issues found.")
	} else {
		out.printf("  %-30s | %15s | %10s\n", "Employee Name", "Line Length", "Excess")
		out.line("  " + strings.Repeat("-", 62))
		for _, r := range rep.LongLines {
			out.printf("  %-30s | %15d | %10d\n", Truncate(r.Employee.FullName(), 30), r.Length, r.Excess)
		}
	}
	out.line("")

	out.section("SUMMARY STATISTICS")
	out.printf("  Total Employees:              %d\n", stats.TotalEmployees)
	out.printf("  Total Managers:               %d\n", stats.TotalManagers)
	out.printf("  Underpaid Managers:           %d\n", stats.UnderpaidManagers)
	out.printf("  Overpaid Managers:            %d\n", stats.OverpaidManagers)
	out.printf("  Long Reporting Lines:         %d\n", stats.LongReportingLines)
	out.printf("  Max Reporting Depth:          %d\n", stats.MaxReportingDepth)
	out.printf("  Salary Compliance Rate:       %.1f%%\n", stats.ComplianceRate())
	out.printf("  Total Issues Found:           %d\n", stats.TotalIssues())
	out.printf("  Execution Time:               %d ms\n", stats.ExecutionTime.Milliseconds())
	out.line("")

	out.line(separator)
	out.line(center(Verdict(stats)))
	out.line(separator)
	out.line("")
	return out.flush()
}

// WriteValidation prints findings the way the CLI reports them on stderr.
func WriteValidation(w io.Writer, result org.ValidationResult) error {
	out := &textWriter{w: bufio.NewWriter(w), p: message.NewPrinter(language.English)}
	if !result.Valid() {
		out.line("Data validation failed:")
		for _, f := range result.Errors() {
			out.line("  ERROR: " + f.Message)
		}
	}
	if result.HasWarnings() {
		out.line("Data validation warnings:")
		for _, f := range result.Warnings() {
			out.line("  WARNING: " + f.Message)
		}
	}
	return out.flush()
}

// Verdict is the closing line of a report.
func Verdict(stats org.Statistics) string {
	if stats.HasIssues() {
		return fmt.Sprintf("⚠ ANALYSIS COMPLETE - %d ISSUE(S) FOUND", stats.TotalIssues())
	}
	return "✓ ANALYSIS COMPLETE - NO ISSUES FOUND"
}

// Truncate shortens text to maxLen runes, marking the cut with "...".
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func center(text string) string {
	padding := (lineWidth - len([]rune(text))) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat(" ", padding) + text
}

type textWriter struct {
	w   *bufio.Writer
	p   *message.Printer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = t.p.Fprintf(t.w, format, args...)
}

func (t *textWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = t.w.WriteString(s + "\n")
}

func (t *textWriter) section(title string) {
	t.line(sectionSeparator)
	t.line(title)
	t.line(sectionSeparator)
}

func (t *textWriter) salarySection(title, limitLabel, deviationLabel string, results []org.SalaryResult, limit func(org.SalaryResult) float64) {
	t.section(title)
	if len(results) == 0 {
		t.line("  ✓ No issues found.")
		t.line("")
		return
	}
	t.printf("  %-25s | %15s | %15s | %12s\n", "Manager Name", "Current Salary", limitLabel, deviationLabel)
	t.line("  " + strings.Repeat("-", 74))
	for _, r := range results {
		t.printf("  %-25s | %15.2f | %15.2f | %12.2f\n", Truncate(r.Manager.FullName(), 25), r.ActualSalary, limit(r), r.Deviation())
	}
	t.line("")
}

func (t *textWriter) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
