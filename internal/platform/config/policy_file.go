package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"orgaudit/internal/domain/org"
)

type policyFile struct {
	Analyzer *filePolicy `yaml:"analyzer"`
}

type filePolicy struct {
	Salary struct {
		MinPercentage *float64 `yaml:"min_percentage"`
		MaxPercentage *float64 `yaml:"max_percentage"`
	} `yaml:"salary"`
	ReportingLine struct {
		MaxLength *int `yaml:"max_length"`
	} `yaml:"reporting_line"`
}

// ReadPolicyFile parses a YAML policy document. Keys left out keep their defaults:
//
//	analyzer:
//	  salary:
//	    min_percentage: 0.20
//	    max_percentage: 0.50
//	  reporting_line:
//	    max_length: 4
func ReadPolicyFile(path string) (org.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return org.Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (org.Policy, error) {
	policy := org.DefaultPolicy()
	if len(bytes.TrimSpace(raw)) == 0 {
		return policy, nil
	}

	var doc policyFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return org.Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if doc.Analyzer == nil {
		return policy, nil
	}
	if v := doc.Analyzer.Salary.MinPercentage; v != nil {
		policy.MinAbovePct = *v
	}
	if v := doc.Analyzer.Salary.MaxPercentage; v != nil {
		policy.MaxAbovePct = *v
	}
	if v := doc.Analyzer.ReportingLine.MaxLength; v != nil {
		policy.MaxReportingDepth = *v
	}
	if err := policy.Validate(); err != nil {
		return org.Policy{}, err
	}
	return policy, nil
}
