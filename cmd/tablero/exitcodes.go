package main

import (
	"errors"
	"fmt"

	"github.com/cesde-ntp/tablero/faults"
)

// Exit codes for the tablero CLI.
const (
	ExitOK                = 0 // Success.
	ExitInvalidArgs       = 1 // Invalid arguments, config or missing credentials.
	ExitRemoteUnavailable = 2 // A remote service failed.
	ExitDataUnavailable   = 3 // The dataset could not be loaded.
)

type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError.
func exitError(code int, format string, args ...any) *exitCodeError {
	return &exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}

// exitCodeFor maps a fault to its exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, faults.ErrDataUnavailable):
		return ExitDataUnavailable
	case errors.Is(err, faults.ErrRemoteUnavailable):
		return ExitRemoteUnavailable
	}
	return ExitInvalidArgs
}

// classify wraps err with the exit code its fault implies.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return err
	}
	return &exitCodeError{code: exitCodeFor(err), msg: "tablero: " + err.Error()}
}
