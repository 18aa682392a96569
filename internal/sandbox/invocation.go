// SPDX-License-Identifier: MPL-2.0

package sandbox

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"shroud/internal/profile"
)

// Separator terminates the option block of the synthesized argument vector;
// everything after it is the target command and its arguments, verbatim.
const Separator = "--"

// Invocation is the complete, ordered argument vector handed to the
// isolation primitive. It is immutable once synthesized: accessors return
// copies so no caller can weaken an already-compiled sandbox.
type Invocation struct {
	args    []string
	command string
}

// Synthesize compiles a resolved profile into the bwrap argument vector.
// The ordering contract is fixed: namespace directives in enumeration order,
// then bind, ro_bind, dev_bind and tmpfs mounts each preserving declaration
// order, then environment directives in merge order, then the separator and
// the target command with its arguments. The same profile and context always
// yield an identical vector.
func Synthesize(p *profile.ResolvedProfile, ctx ExpandContext, command string, cmdArgs []string) (*Invocation, error) {
	var args []string

	for _, decision := range NamespacePolicy(p) {
		if flag := decision.Flag(); flag != "" {
			args = append(args, flag)
		}
	}

	for _, token := range p.Bind {
		m, err := ctx.Mount(token)
		if err != nil {
			return nil, err
		}
		args = append(args, "--bind", m.Source, m.Dest)
	}
	for _, token := range p.RoBind {
		m, err := ctx.Mount(token)
		if err != nil {
			return nil, err
		}
		args = append(args, "--ro-bind", m.Source, m.Dest)
	}
	for _, token := range p.DevBind {
		m, err := ctx.Mount(token)
		if err != nil {
			return nil, err
		}
		args = append(args, "--dev-bind", m.Source, m.Dest)
	}
	for _, token := range p.Tmpfs {
		dest, err := ctx.Tmpfs(token)
		if err != nil {
			return nil, err
		}
		args = append(args, "--tmpfs", dest)
	}

	for _, d := range p.Env {
		if d.Unset {
			args = append(args, "--unsetenv", d.Name)
			continue
		}
		args = append(args, "--setenv", d.Name, ctx.Expand(d.Value))
	}

	args = append(args, Separator, command)
	args = append(args, cmdArgs...)

	return &Invocation{args: args, command: command}, nil
}

// Command returns the target command name.
func (inv *Invocation) Command() string { return inv.command }

// Args returns a copy of the full argument vector (everything after the
// bwrap executable itself).
func (inv *Invocation) Args() []string {
	args := make([]string, len(inv.args))
	copy(args, inv.args)
	return args
}

// CommandLine renders the invocation as a single shell-safe line, prefixed
// with the given bwrap executable. Used by `command show`; the rendering is
// for human eyes and never re-parsed by the engine.
func (inv *Invocation) CommandLine(bwrapPath string) string {
	parts := make([]string, 0, len(inv.args)+1)
	parts = append(parts, quoteToken(bwrapPath))
	for _, arg := range inv.args {
		parts = append(parts, quoteToken(arg))
	}
	return strings.Join(parts, " ")
}

// quoteToken shell-quotes a single argument. syntax.Quote only fails on
// strings no shell can represent (NUL bytes); those fall back to the raw
// token rather than dropping it.
func quoteToken(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return s
	}
	return quoted
}
