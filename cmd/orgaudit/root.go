package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(env *cliEnv) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "orgaudit",
		Short:         "Audit an employee hierarchy for salary bands and reporting line depth",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(env.stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)
	cmd.SetVersionTemplate("Organization Analyzer v{{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log progress to stderr")

	cmd.AddCommand(newAnalyzeCmd(env))
	cmd.AddCommand(newValidateCmd(env))
	cmd.AddCommand(newReportCmd(env))
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(env))
	return cmd
}

func newVersionCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.stdout, "Organization Analyzer v%s\n", version)
		},
	}
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(&cliEnv{stdout: stdout, stderr: stderr})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	code := exitCode(err)
	if err != nil && !errors.Is(err, errIssuesFound) {
		fmt.Fprintln(stderr, "Error: "+err.Error())
		if code == exitUsage {
			fmt.Fprintln(stderr, "Run 'orgaudit --help' for usage.")
		}
	}
	return code
}
