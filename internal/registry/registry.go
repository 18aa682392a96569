// SPDX-License-Identifier: MPL-2.0

// Package registry exposes the resolved command set of one configuration
// source to the CLI surface and the shell hooks. It resolves every command
// independently so one broken entry never hides the state of the others.
package registry

import (
	"sort"

	"shroud/internal/profile"
)

type (
	// Entry is one command's resolution outcome. Exactly one of Profile and
	// Err is set. Disabled commands keep their resolved profile so list and
	// check can report them, but are never selected for execution.
	Entry struct {
		Name    string
		Profile *profile.ResolvedProfile
		Err     error
	}

	// Registry is the resolved, name-sorted command set.
	Registry struct {
		entries []Entry
		byName  map[string]int
	}
)

// Enabled reports whether the entry resolved cleanly and is enabled.
func (e Entry) Enabled() bool {
	return e.Err == nil && e.Profile != nil && e.Profile.Enabled
}

// Build resolves every non-model entry of the tree. Resolution failures are
// attached to their entry instead of aborting the batch. Entries are sorted
// by name so output is stable across invocations against an unchanged file.
func Build(tree *profile.Tree) *Registry {
	names := tree.Commands()
	sort.Strings(names)

	r := &Registry{byName: make(map[string]int, len(names))}
	for _, name := range names {
		entry := Entry{Name: name}
		p, err := profile.Resolve(tree, name)
		if err != nil {
			entry.Err = err
		} else {
			entry.Profile = p
		}
		r.byName[name] = len(r.entries)
		r.entries = append(r.entries, entry)
	}
	return r
}

// Entries returns all entries in name order, disabled and failed included.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// EnabledNames returns the names of all enabled commands in name order.
// This is the exact set the shell hooks intercept.
func (r *Registry) EnabledNames() []string {
	var names []string
	for _, e := range r.entries {
		if e.Enabled() {
			names = append(names, e.Name)
		}
	}
	return names
}

// Lookup returns the entry for one command name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	at, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[at], true
}

// Errors returns the entries whose resolution failed, in name order.
func (r *Registry) Errors() []Entry {
	var failed []Entry
	for _, e := range r.entries {
		if e.Err != nil {
			failed = append(failed, e)
		}
	}
	return failed
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.entries) }
