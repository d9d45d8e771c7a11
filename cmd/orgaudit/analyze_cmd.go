package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/csvimport"
	"orgaudit/internal/report"
)

type analyzeOptions struct {
	strict       bool
	validateOnly bool
	format       string
	policy       policyFlags
}

func newAnalyzeCmd(env *cliEnv) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze <csv-file>",
		Short: "Validate and analyse an employee CSV file",
		Long: `Validate and analyse an employee CSV file.

Exit codes:
  0  success, no issues found
  1  analysis completed with issues found
  2  invalid arguments or file not found
  3  parse error in input file
  4  data validation failed
  5  internal error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = strings.ToLower(strings.TrimSpace(opts.format))
			if opts.format != "text" && opts.format != "json" {
				return withCode(exitUsage, fmt.Errorf("unsupported --format: %s", opts.format))
			}
			policy, err := opts.policy.resolve(cmd, os.Getenv)
			if err != nil {
				return err
			}
			return runAnalyze(env, args[0], policy, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on validation warnings")
	cmd.Flags().BoolVar(&opts.validateOnly, "validate-only", false, "only validate data, don't run analysis")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")
	opts.policy.register(cmd)
	return cmd
}

func runAnalyze(env *cliEnv, path string, policy org.Policy, opts analyzeOptions) error {
	set, err := loadEmployees(path)
	if err != nil {
		return err
	}
	slog.Info("employees loaded", "path", path, "count", set.Len(), "policy", policy.String())

	rep, err := org.Audit(set, policy, org.AuditOptions{Strict: opts.strict, ValidateOnly: opts.validateOnly})
	if err != nil {
		if org.IsStructural(err) {
			return withCode(exitValidation, fmt.Errorf("analyzing organization structure: %w", err))
		}
		return withCode(exitInternal, err)
	}

	if opts.format == "json" {
		return writeJSON(env, rep)
	}

	if !rep.Validation.Valid() || rep.Validation.HasWarnings() {
		if err := report.WriteValidation(env.stderr, rep.Validation); err != nil {
			return withCode(exitInternal, err)
		}
	}
	switch {
	case !rep.Validation.Valid():
		return withCode(exitValidation, errors.New("data validation failed"))
	case rep.StrictViolation:
		return withCode(exitValidation, errors.New("strict mode enabled - failing due to warnings"))
	case opts.validateOnly:
		fmt.Fprintf(env.stdout, "Validation passed. %d employees loaded.\n", set.Len())
		return nil
	}

	if err := report.WriteText(env.stdout, rep, report.TextOptions{}); err != nil {
		return withCode(exitInternal, err)
	}
	return outcomeError(rep)
}

func writeJSON(env *cliEnv, rep *org.Report) error {
	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"outcome": rep.Outcome(), "report": rep}); err != nil {
		return withCode(exitInternal, err)
	}
	return outcomeError(rep)
}

func outcomeError(rep *org.Report) error {
	switch rep.Outcome() {
	case org.OutcomeValidationFailed:
		return withCode(exitValidation, errors.New("data validation failed"))
	case org.OutcomeIssuesFound:
		return withCode(exitIssues, errIssuesFound)
	default:
		return nil
	}
}

func loadEmployees(path string) (*org.EmployeeSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, withCode(exitUsage, fmt.Errorf("file not found: %s", path))
		}
		return nil, withCode(exitUsage, fmt.Errorf("cannot read file: %s", path))
	}
	if info.IsDir() {
		return nil, withCode(exitUsage, fmt.Errorf("not a file: %s", path))
	}
	set, err := csvimport.ParseFile(path)
	if err != nil {
		return nil, withCode(exitParse, fmt.Errorf("parsing CSV file: %w", err))
	}
	return set, nil
}
