// SPDX-License-Identifier: MPL-2.0

// Package shellhook carries the per-shell integration scripts. The scripts
// are the engine's only external collaborators besides bwrap: they call
// `shroud command list --simple` to learn which names to intercept and
// `shroud command exec` to run them, and cache the name list between
// directory changes. That two-call contract is stable; the engine itself
// stays stateless.
package shellhook

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed scripts
var scripts embed.FS

const (
	// Bash integration, installed via PROMPT_COMMAND.
	Bash Shell = "bash"
	// Zsh integration, installed via a chpwd hook.
	Zsh Shell = "zsh"
	// Fish integration, installed via an --on-variable PWD handler.
	Fish Shell = "fish"
)

// ErrUnsupportedShell is the sentinel error wrapped by UnsupportedShellError.
var ErrUnsupportedShell = errors.New("unsupported shell")

type (
	// Shell identifies a supported shell integration.
	Shell string

	// UnsupportedShellError is returned for a shell name shroud has no hook
	// script for.
	UnsupportedShellError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell %q (supported: bash, zsh, fish)", e.Name)
}

// Unwrap returns ErrUnsupportedShell so callers can use errors.Is for
// detection.
func (e *UnsupportedShellError) Unwrap() error { return ErrUnsupportedShell }

// Shells lists every supported shell.
func Shells() []Shell {
	return []Shell{Bash, Zsh, Fish}
}

// Parse maps a user-supplied shell name to a supported Shell.
func Parse(name string) (Shell, error) {
	switch Shell(strings.ToLower(name)) {
	case Bash:
		return Bash, nil
	case Zsh:
		return Zsh, nil
	case Fish:
		return Fish, nil
	default:
		return "", &UnsupportedShellError{Name: name}
	}
}

// String returns the shell name.
func (s Shell) String() string { return string(s) }

// Script returns the integration script text for the shell.
func (s Shell) Script() (string, error) {
	data, err := scripts.ReadFile(fmt.Sprintf("scripts/hook.%s", s))
	if err != nil {
		return "", &UnsupportedShellError{Name: string(s)}
	}
	return string(data), nil
}
