// SPDX-License-Identifier: MPL-2.0

// Package profile parses sandbox configuration files into an attribute tree
// and resolves model inheritance into flattened, per-command profiles.
//
// A configuration file is a YAML mapping of entry name to attribute set.
// Entries marked `type: model` are reusable, non-executable attribute
// bundles; every other entry declares the sandbox policy for one runnable
// command. Entries may reference one another through `extends`, forming a
// directed graph that the resolver flattens base-to-derived.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NamespaceUser is the user namespace (UIDs/GIDs).
	NamespaceUser NamespaceKind = "user"
	// NamespaceNetwork is the network namespace.
	NamespaceNetwork NamespaceKind = "network"
	// NamespacePID is the process ID namespace.
	NamespacePID NamespaceKind = "pid"
	// NamespaceIPC is the System V IPC / POSIX message queue namespace.
	NamespaceIPC NamespaceKind = "ipc"
	// NamespaceUTS is the hostname/domainname namespace.
	NamespaceUTS NamespaceKind = "uts"
	// NamespaceCgroup is the cgroup namespace.
	NamespaceCgroup NamespaceKind = "cgroup"
)

// Namespaces lists every NamespaceKind in the fixed directive order used
// when synthesizing an invocation. The order is part of the output contract:
// resolving the same configuration twice must produce byte-identical
// argument vectors.
var Namespaces = [6]NamespaceKind{
	NamespaceUser,
	NamespaceNetwork,
	NamespacePID,
	NamespaceIPC,
	NamespaceUTS,
	NamespaceCgroup,
}

var (
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("config parse error")
	// ErrUnknownModel is the sentinel error wrapped by UnknownModelError.
	ErrUnknownModel = errors.New("unknown extends target")
	// ErrCycle is the sentinel error wrapped by CycleError.
	ErrCycle = errors.New("extends cycle")
	// ErrUnknownNamespace is the sentinel error wrapped by UnknownNamespaceError.
	ErrUnknownNamespace = errors.New("unknown namespace")
)

type (
	// NamespaceKind identifies one of the six kernel namespaces a sandbox
	// can share with the host. The set is closed: any other value in a
	// `share` list fails resolution.
	NamespaceKind string

	// EnvVar is one name=value pair from an entry's `env` mapping,
	// in declaration order.
	EnvVar struct {
		Name  string
		Value string
	}

	// Entry is one raw, pre-merge entry of the attribute tree, exactly as
	// declared in the configuration file.
	Entry struct {
		// Name is the entry's key in the top-level mapping.
		Name string
		// IsModel is true for entries declared with `type: model`.
		IsModel bool
		// Extends names the entry this one inherits from ("" for none).
		Extends string
		// Enabled is nil when never declared; resolution defaults it to true.
		Enabled *bool
		// Share lists namespace names as written; validated at resolution.
		Share []string
		// Bind, RoBind, DevBind and Tmpfs hold raw mount tokens in
		// declaration order. Placeholder expansion happens later, at
		// translation time.
		Bind    []string
		RoBind  []string
		DevBind []string
		Tmpfs   []string
		// Env holds the entry's environment assignments in declaration order.
		Env []EnvVar
		// UnsetEnv lists variable names to remove from the sandbox.
		UnsetEnv []string
		// Line is the 1-based line of the entry's key, for error reporting.
		Line int
	}

	// Tree is the parsed attribute tree of one configuration source:
	// every entry keyed by name, with declaration order preserved.
	Tree struct {
		entries map[string]*Entry
		order   []string
	}

	// EnvDirective is one environment operation of a resolved profile.
	// Set and unset directives live in a single ordered sequence so that
	// the later of two colliding directives wins, mirroring how the
	// isolation primitive applies them.
	EnvDirective struct {
		Name  string
		Value string
		Unset bool
	}

	// ResolvedProfile is the immutable, fully merged sandbox policy for one
	// command. All `extends` references have been flattened; only
	// placeholder expansion and argument synthesis remain.
	ResolvedProfile struct {
		Name    string
		Enabled bool
		// Share holds the merged namespace set, ancestor-first and
		// deduplicated. Membership, not order, is what the policy engine
		// consumes.
		Share []NamespaceKind
		// Mount sequences are ancestor-first concatenations without
		// deduplication; a later duplicate legally shadows an earlier one
		// at mount time.
		Bind    []string
		RoBind  []string
		DevBind []string
		Tmpfs   []string
		// Env is the unified set/unset sequence in merge order.
		Env []EnvDirective
	}

	// ParseError reports a malformed configuration file. It is fatal for
	// the whole configuration source.
	ParseError struct {
		Line int
		Msg  string
	}

	// UnknownModelError reports an `extends` reference to a name that does
	// not exist in the configuration source. Fatal only for the command
	// whose chain contains the reference.
	UnknownModelError struct {
		Entry  string
		Target string
	}

	// CycleError reports a cyclic `extends` chain. Path holds the full
	// cycle, first node repeated at the end.
	CycleError struct {
		Path []string
	}

	// UnknownNamespaceError reports a `share` value outside the closed
	// NamespaceKind enumeration.
	UnknownNamespaceError struct {
		Entry string
		Value string
	}
)

// IsValid returns whether the NamespaceKind belongs to the closed enumeration.
func (k NamespaceKind) IsValid() bool {
	switch k {
	case NamespaceUser, NamespaceNetwork, NamespacePID, NamespaceIPC, NamespaceUTS, NamespaceCgroup:
		return true
	}
	return false
}

// String returns the namespace name as written in configuration files.
func (k NamespaceKind) String() string { return string(k) }

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("config parse error: %s", e.Msg)
}

// Unwrap returns ErrParse so callers can use errors.Is for detection.
func (e *ParseError) Unwrap() error { return ErrParse }

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("entry %q extends unknown entry %q", e.Entry, e.Target)
}

// Unwrap returns ErrUnknownModel so callers can use errors.Is for detection.
func (e *UnknownModelError) Unwrap() error { return ErrUnknownModel }

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("extends cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrCycle so callers can use errors.Is for detection.
func (e *CycleError) Unwrap() error { return ErrCycle }

// Error implements the error interface.
func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("entry %q shares unknown namespace %q (valid: user, network, pid, ipc, uts, cgroup)", e.Entry, e.Value)
}

// Unwrap returns ErrUnknownNamespace so callers can use errors.Is for detection.
func (e *UnknownNamespaceError) Unwrap() error { return ErrUnknownNamespace }

// Entry returns the named entry, if declared.
func (t *Tree) Entry(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Names returns every entry name in declaration order.
func (t *Tree) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Commands returns the names of all non-model entries in declaration order.
func (t *Tree) Commands() []string {
	var names []string
	for _, name := range t.order {
		if !t.entries[name].IsModel {
			names = append(names, name)
		}
	}
	return names
}

// Len returns the number of declared entries.
func (t *Tree) Len() int { return len(t.order) }

// Shares reports whether the resolved profile shares the given namespace.
func (p *ResolvedProfile) Shares(kind NamespaceKind) bool {
	for _, k := range p.Share {
		if k == kind {
			return true
		}
	}
	return false
}
