// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shroud/pkg/types"
)

// ExitError carries a process exit code out of a RunE handler so that
// Execute, not the handler, decides when to call os.Exit. Exec uses it both
// for the engine's reserved codes and to pass a sandboxed child's own exit
// code through unchanged.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the cause's message when one is attached; a bare code reads
// as "exit status N", matching what a shell would report.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ExitError) Unwrap() error {
	return e.Err
}
