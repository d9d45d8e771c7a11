package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/config"
)

type policyFlags struct {
	file     string
	minPct   float64
	maxPct   float64
	maxDepth int
}

func (p *policyFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&p.file, "policy-file", "", "YAML policy file (defaults to $ANALYZER_POLICY_FILE)")
	flags.Float64Var(&p.minPct, "min-pct", org.DefaultMinAbovePct*100, "minimum manager salary, percent above subordinate average")
	flags.Float64Var(&p.maxPct, "max-pct", org.DefaultMaxAbovePct*100, "maximum manager salary, percent above subordinate average")
	flags.IntVar(&p.maxDepth, "max-depth", org.DefaultMaxReportingDepth, "maximum managers between an employee and the CEO")
}

// resolve layers explicit flags over the environment, the policy file and the defaults.
func (p *policyFlags) resolve(cmd *cobra.Command, getenv func(string) string) (org.Policy, error) {
	path := p.file
	if path == "" {
		path = getenv("ANALYZER_POLICY_FILE")
	}
	policy, err := config.LoadPolicy(path)
	if err != nil {
		return org.Policy{}, withCode(exitUsage, fmt.Errorf("policy: %w", err))
	}
	flags := cmd.Flags()
	if flags.Changed("min-pct") {
		policy.MinAbovePct = p.minPct / 100
	}
	if flags.Changed("max-pct") {
		policy.MaxAbovePct = p.maxPct / 100
	}
	if flags.Changed("max-depth") {
		policy.MaxReportingDepth = p.maxDepth
	}
	if err := policy.Validate(); err != nil {
		return org.Policy{}, withCode(exitUsage, err)
	}
	return policy, nil
}
