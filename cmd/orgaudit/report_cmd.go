package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/report"
)

func newReportCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render audit reports",
	}
	cmd.AddCommand(newReportPDFCmd(env))
	return cmd
}

func newReportPDFCmd(env *cliEnv) *cobra.Command {
	var (
		output string
		title  string
		policy policyFlags
	)
	cmd := &cobra.Command{
		Use:   "pdf <csv-file>",
		Short: "Write the audit report as a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return withCode(exitUsage, errors.New("--output is required"))
			}
			resolved, err := policy.resolve(cmd, os.Getenv)
			if err != nil {
				return err
			}
			set, err := loadEmployees(args[0])
			if err != nil {
				return err
			}
			rep, err := org.Audit(set, resolved, org.AuditOptions{})
			if err != nil {
				return withCode(exitInternal, err)
			}
			if !rep.Validation.Valid() {
				_ = report.WriteValidation(env.stderr, rep.Validation)
				return withCode(exitValidation, errors.New("data validation failed"))
			}

			f, err := os.Create(output)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("create %s: %w", output, err))
			}
			if err := report.WritePDF(f, rep, report.PDFOptions{Title: title}); err != nil {
				_ = f.Close()
				return withCode(exitInternal, err)
			}
			if err := f.Close(); err != nil {
				return withCode(exitInternal, err)
			}
			fmt.Fprintf(env.stdout, "Report written to %s\n", output)
			return outcomeError(rep)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination PDF path")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	policy.register(cmd)
	return cmd
}
