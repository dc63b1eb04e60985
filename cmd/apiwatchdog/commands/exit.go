package commands

import (
	"errors"

	"github.com/five82/apiwatchdog/internal/config"
	"github.com/five82/apiwatchdog/internal/provider"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

// runtimeError marks a failure that happened after the arguments were
// accepted.
type runtimeError struct {
	err error
}

func (e *runtimeError) Error() string { return e.err.Error() }

func (e *runtimeError) Unwrap() error { return e.err }

func runtimeFailure(err error) error {
	if err == nil {
		return nil
	}
	return &runtimeError{err: err}
}

// ExitCode maps an Execute error to the process exit code: invalid input and
// flag parsing errors are usage errors, anything else is a runtime error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, provider.ErrInvalidEndpoint) || errors.Is(err, config.ErrInvalid) {
		return ExitUsage
	}
	var re *runtimeError
	if errors.As(err, &re) {
		return ExitRuntime
	}
	return ExitUsage
}
