package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"orgaudit/internal/domain/org"
)

type PDFOptions struct {
	Title    string
	Location *time.Location
}

// WritePDF renders the report as an A4 document. Validation findings are
// always listed; analysis sections only appear when the analysis ran.
func WritePDF(w io.Writer, rep *org.Report, opts PDFOptions) error {
	if rep == nil {
		return fmt.Errorf("nil report")
	}
	title := opts.Title
	if title == "" {
		title = "Organization Structure Analysis Report"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if rep.Stats != nil {
		pdf.Cell(0, 7, "Analysis Date: "+rep.Stats.AnalyzedAt.In(loc).Format(timestampLayout))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, "Policy: "+rep.Policy.String())
	pdf.Ln(10)

	heading(pdf, "Validation")
	if rep.Validation.Valid() && !rep.Validation.HasWarnings() {
		pdf.Cell(0, 7, "No structural problems found.")
		pdf.Ln(7)
	}
	for _, f := range rep.Validation.Errors() {
		pdf.MultiCell(0, 6, tr("ERROR: "+f.Message), "", "L", false)
	}
	for _, f := range rep.Validation.Warnings() {
		pdf.MultiCell(0, 6, tr("WARNING: "+f.Message), "", "L", false)
	}
	pdf.Ln(4)

	if rep.Analyzed && rep.Stats != nil {
		salaryTable(pdf, tr, "Managers earning less than required", "Min Required", "Underpaid By", rep.Underpaid, func(r org.SalaryResult) float64 { return r.MinExpected })
		salaryTable(pdf, tr, "Managers earning more than allowed", "Max Allowed", "Overpaid By", rep.Overpaid, func(r org.SalaryResult) float64 { return r.MaxExpected })

		heading(pdf, "Employees with reporting line too long")
		if len(rep.LongLines) == 0 {
			pdf.Cell(0, 7, "No issues found.")
			pdf.Ln(9)
		} else {
			tableHeader(pdf, []float64{110, 40, 30}, []string{"Employee Name", "Line Length", "Excess"})
			for _, r := range rep.LongLines {
				pdf.CellFormat(110, 7, tr(Truncate(r.Employee.FullName(), 50)), "1", 0, "L", false, 0, "")
				pdf.CellFormat(40, 7, fmt.Sprintf("%d", r.Length), "1", 0, "R", false, 0, "")
				pdf.CellFormat(30, 7, fmt.Sprintf("%d", r.Excess), "1", 1, "R", false, 0, "")
			}
			pdf.Ln(4)
		}

		stats := *rep.Stats
		heading(pdf, "Summary statistics")
		for _, row := range [][2]string{
			{"Total Employees", fmt.Sprintf("%d", stats.TotalEmployees)},
			{"Total Managers", fmt.Sprintf("%d", stats.TotalManagers)},
			{"Underpaid Managers", fmt.Sprintf("%d", stats.UnderpaidManagers)},
			{"Overpaid Managers", fmt.Sprintf("%d", stats.OverpaidManagers)},
			{"Long Reporting Lines", fmt.Sprintf("%d", stats.LongReportingLines)},
			{"Max Reporting Depth", fmt.Sprintf("%d", stats.MaxReportingDepth)},
			{"Salary Compliance Rate", fmt.Sprintf("%.1f%%", stats.ComplianceRate())},
			{"Total Issues Found", fmt.Sprintf("%d", stats.TotalIssues())},
		} {
			pdf.CellFormat(70, 7, row[0], "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, row[1], "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		if stats.HasIssues() {
			pdf.Cell(0, 8, fmt.Sprintf("ANALYSIS COMPLETE - %d ISSUE(S) FOUND", stats.TotalIssues()))
		} else {
			pdf.Cell(0, 8, "ANALYSIS COMPLETE - NO ISSUES FOUND")
		}
	}

	if err := pdf.Output(w); err != nil {
		return err
	}
	return nil
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, label := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, label, "1", ln, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
}

func salaryTable(pdf *gofpdf.Fpdf, tr func(string) string, title, limitLabel, deviationLabel string, results []org.SalaryResult, limit func(org.SalaryResult) float64) {
	heading(pdf, title)
	if len(results) == 0 {
		pdf.Cell(0, 7, "No issues found.")
		pdf.Ln(9)
		return
	}
	widths := []float64{70, 40, 40, 30}
	tableHeader(pdf, widths, []string{"Manager Name", "Current Salary", limitLabel, deviationLabel})
	for _, r := range results {
		pdf.CellFormat(widths[0], 7, tr(Truncate(r.Manager.FullName(), 32)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%.2f", r.ActualSalary), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", limit(r)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", r.Deviation()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
