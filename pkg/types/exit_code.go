// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the engine and
// the CLI layer. It is a leaf dependency: it imports only the standard
// library and is imported by domain packages, never the other way around.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

// Reserved engine-level exit codes. These are how callers (and the shell
// hooks) distinguish "the sandbox could not be built" from "the sandboxed
// program failed". Child exit codes pass through verbatim, so a child that
// itself exits with one of these values is indistinguishable by code alone;
// the engine additionally reports its own failures on stderr.
const (
	// CodeResolutionFailure means the configuration could not be resolved
	// into a sandbox policy (parse error, unknown model, cycle, bad
	// namespace value, bad mount spec, or no configuration at all).
	CodeResolutionFailure ExitCode = 125

	// CodeSpawnFailure means the isolation primitive (bwrap) could not be
	// started.
	CodeSpawnFailure ExitCode = 126

	// CodeUnknownCommand means the requested command is not configured or
	// is disabled.
	CodeUnknownCommand ExitCode = 127
)

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for
// programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid returns whether the ExitCode is in the valid range (0-255),
// and a list of validation errors if it is not.
func (c ExitCode) IsValid() (bool, []error) {
	if c < 0 || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// IsEngineFailure returns true if the exit code is one of the reserved
// engine-level failure codes.
func (c ExitCode) IsEngineFailure() bool {
	return c == CodeResolutionFailure || c == CodeSpawnFailure || c == CodeUnknownCommand
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
