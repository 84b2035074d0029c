// Package faults holds the error taxonomy shared by the dashboard packages.
//
// Callers wrap one of the sentinels with fmt.Errorf("...: %w", err) and the
// edges (pages, HTTP handlers, CLI) branch on errors.Is.
package faults

import "errors"

var (
	// ErrDataUnavailable means a dataset could not be read or is malformed.
	// It is fatal to the page that needs the dataset.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrRemoteUnavailable means a remote API call failed in transport, status
	// or payload. It is recoverable: prior state stays untouched.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrMissingCredential means a secret needed for a remote call is not set.
	ErrMissingCredential = errors.New("missing credential")
)

// Fatal reports whether err should stop the page that produced it.
func Fatal(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
