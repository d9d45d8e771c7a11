package main

import "errors"

const (
	exitOK         = 0
	exitIssues     = 1
	exitUsage      = 2
	exitParse      = 3
	exitValidation = 4
	exitInternal   = 5
)

// errIssuesFound ends a successful analysis that reported policy violations.
var errIssuesFound = errors.New("analysis completed with issues found")

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode maps an error to the process exit status. Errors without a code
// come from cobra's argument parsing.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUsage
}
