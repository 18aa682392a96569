// SPDX-License-Identifier: MPL-2.0

// Package sandbox turns a resolved profile into a concrete bwrap invocation
// and delegates execution to it. It covers the namespace policy (which
// namespaces to isolate), placeholder expansion for mounts and environment
// directives, argument synthesis, and the child process runner.
package sandbox

import "shroud/internal/profile"

// unshareFlags maps each namespace kind to the bwrap flag that isolates it.
var unshareFlags = map[profile.NamespaceKind]string{
	profile.NamespaceUser:    "--unshare-user",
	profile.NamespaceNetwork: "--unshare-net",
	profile.NamespacePID:     "--unshare-pid",
	profile.NamespaceIPC:     "--unshare-ipc",
	profile.NamespaceUTS:     "--unshare-uts",
	profile.NamespaceCgroup:  "--unshare-cgroup",
}

// NamespaceDecision is the isolate-or-share verdict for one namespace kind.
type NamespaceDecision struct {
	Kind  profile.NamespaceKind
	Share bool
}

// NamespacePolicy produces a complete decision for all six namespace kinds,
// in the fixed enumeration order. Every kind absent from the profile's share
// set is isolated: a command declared with zero attributes gets a fully
// isolated sandbox, never an open one.
func NamespacePolicy(p *profile.ResolvedProfile) []NamespaceDecision {
	decisions := make([]NamespaceDecision, 0, len(profile.Namespaces))
	for _, kind := range profile.Namespaces {
		decisions = append(decisions, NamespaceDecision{Kind: kind, Share: p.Shares(kind)})
	}
	return decisions
}

// Flag returns the bwrap argument for an isolate decision, or "" for a share
// decision (sharing a namespace is the absence of its unshare flag).
func (d NamespaceDecision) Flag() string {
	if d.Share {
		return ""
	}
	return unshareFlags[d.Kind]
}
