package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newValidateCmd(env *cliEnv) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <csv-file>",
		Short: "Check the hierarchy structure without running the analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var noFlags policyFlags
			policy, err := noFlags.resolve(cmd, os.Getenv)
			if err != nil {
				return err
			}
			return runAnalyze(env, args[0], policy, analyzeOptions{strict: strict, validateOnly: true, format: "text"})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on validation warnings")
	return cmd
}
