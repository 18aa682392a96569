// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly
// messages. Besides the ActionableError builder it carries a small catalog
// of known failure modes with Markdown remediation text, rendered on demand.
package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies one known failure mode.
type Id int

const (
	NoConfigId Id = iota + 1
	ConfigParseErrorId
	CommandNotFoundId
	CommandDisabledId
	ExtendsCycleId
	UnknownModelId
	UnknownNamespaceId
	InvalidMountSpecId
	BwrapNotFoundId
)

// MarkdownMsg is Markdown text rendered for the user.
type MarkdownMsg string

// Issue is one catalog entry: what went wrong and what the user can try.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

// Id returns the issue's identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown text.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the issue's Markdown for terminal display.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

// Lookup returns the catalog entry for an Id, if one exists.
func Lookup(id Id) (*Issue, bool) {
	at := slices.IndexFunc(catalog, func(i *Issue) bool { return i.id == id })
	if at < 0 {
		return nil, false
	}
	return catalog[at], true
}

var (
	render = glamour.Render

	noConfigIssue = &Issue{
		id: NoConfigId,
		mdMsg: `
# No shroud configuration found

We searched for a configuration but none exists.

## Search locations (in order of precedence):
1. ` + "`.shroud.yaml`" + ` in the current directory or any parent directory
2. ` + "`~/.config/shroud/default.yaml`" + `

## Things you can try:
- Create a starter configuration in the current directory:
~~~
$ shroud config init
~~~
- Or create a user-level default:
~~~
$ mkdir -p ~/.config/shroud
$ shroud config init && mv .shroud.yaml ~/.config/shroud/default.yaml
~~~`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse the configuration file

The configuration contains invalid YAML or a malformed entry.

## Common issues:
- Two entries declared with the same name
- A list attribute (share, bind, ro_bind, dev_bind, tmpfs, unset_env)
  written as a scalar
- Indentation errors

## Things you can try:
- Check the line named in the error message
- Validate the file:
~~~
$ shroud config check
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not configured

The command you asked for has no entry in the selected configuration.

## Things you can try:
- List the configured commands:
~~~
$ shroud command list
~~~
- Check which configuration file is in effect:
~~~
$ shroud config which
~~~`,
	}

	commandDisabledIssue = &Issue{
		id: CommandDisabledId,
		mdMsg: `
# Command is disabled

The entry exists but declares ` + "`enabled: false`" + `, so shroud refuses
to wrap it. Run the command directly, or re-enable the entry.`,
	}

	extendsCycleIssue = &Issue{
		id: ExtendsCycleId,
		mdMsg: `
# Extends cycle detected

The entry's ` + "`extends`" + ` chain loops back on itself, so no flattened
profile exists. Break the cycle by removing one of the references named in
the error message.`,
	}

	unknownModelIssue = &Issue{
		id: UnknownModelId,
		mdMsg: `
# Unknown extends target

An ` + "`extends`" + ` attribute names an entry that is not declared in the
selected configuration file. Models must live in the same file as the
commands that reference them; there is no cross-file inheritance.`,
	}

	unknownNamespaceIssue = &Issue{
		id: UnknownNamespaceId,
		mdMsg: `
# Unknown namespace value

A ` + "`share`" + ` list contains a value outside the closed namespace set.

Valid values: ` + "`user`, `network`, `pid`, `ipc`, `uts`, `cgroup`" + `.`,
	}

	invalidMountSpecIssue = &Issue{
		id: InvalidMountSpecId,
		mdMsg: `
# Invalid mount specification

A bind entry expanded to an empty path. This usually means a placeholder
referenced a variable that is unset in your environment. shroud refuses to
guess: a silently dropped mount would weaken the sandbox.`,
	}

	bwrapNotFoundIssue = &Issue{
		id: BwrapNotFoundId,
		mdMsg: `
# bubblewrap not found

shroud delegates isolation to the ` + "`bwrap`" + ` executable, which could
not be started.

## Things you can try:
- Install bubblewrap with your package manager (package is usually
  ` + "`bubblewrap`" + `)
- Or point shroud at an explicit path in ` + "`~/.config/shroud/config.yaml`" + `:
~~~yaml
bwrap:
  path: /usr/local/bin/bwrap
~~~`,
	}

	catalog = []*Issue{
		noConfigIssue,
		configParseErrorIssue,
		commandNotFoundIssue,
		commandDisabledIssue,
		extendsCycleIssue,
		unknownModelIssue,
		unknownNamespaceIssue,
		invalidMountSpecIssue,
		bwrapNotFoundIssue,
	}
)
