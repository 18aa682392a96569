// SPDX-License-Identifier: MPL-2.0

package profile

// Marking states for the extends walk. Every entry starts unvisited; it is
// marked in-progress while somewhere on the current chain and done once its
// chain has been fully collected. Re-entering an in-progress entry is the
// cycle signal.
const (
	markUnvisited = iota
	markInProgress
	markDone
)

// Resolve flattens the named entry's extends chain into a ResolvedProfile.
//
// The chain is merged base-to-derived: the most distant ancestor's
// attributes come first and each descendant's attributes are applied on top.
// Resolution of one entry is independent of every other entry in the tree;
// a broken chain fails only the commands whose chains contain the break.
func Resolve(tree *Tree, name string) (*ResolvedProfile, error) {
	entry, ok := tree.Entry(name)
	if !ok {
		return nil, &UnknownModelError{Entry: name, Target: name}
	}

	chain, err := extendsChain(tree, entry)
	if err != nil {
		return nil, err
	}

	return merge(name, chain)
}

// extendsChain walks the extends references from the given entry to its most
// distant ancestor, returning the chain base-first. Each node has at most one
// outgoing edge, so the walk is linear in chain length; the in-progress
// marking still catches every cycle, including self-extension.
func extendsChain(tree *Tree, entry *Entry) ([]*Entry, error) {
	marks := make(map[string]int)
	var chain []*Entry

	cur := entry
	for {
		marks[cur.Name] = markInProgress
		chain = append(chain, cur)

		if cur.Extends == "" {
			break
		}
		next, ok := tree.Entry(cur.Extends)
		if !ok {
			return nil, &UnknownModelError{Entry: cur.Name, Target: cur.Extends}
		}
		if marks[next.Name] == markInProgress {
			return nil, &CycleError{Path: cyclePath(chain, next.Name)}
		}
		cur = next
	}

	for _, e := range chain {
		marks[e.Name] = markDone
	}

	// Reverse to base-first for merging.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// cyclePath extracts the full cycle from the walked chain, repeating the
// entry that closes it so the report reads a -> b -> a.
func cyclePath(chain []*Entry, closing string) []string {
	start := 0
	for i, e := range chain {
		if e.Name == closing {
			start = i
			break
		}
	}
	var path []string
	for _, e := range chain[start:] {
		path = append(path, e.Name)
	}
	return append(path, closing)
}

// merge applies the chain's attributes base-to-derived and produces the
// flattened profile.
func merge(name string, chain []*Entry) (*ResolvedProfile, error) {
	p := &ResolvedProfile{Name: name, Enabled: true}

	shared := make(map[NamespaceKind]bool)
	// envIndex tracks, per variable name, the position of its most recent
	// directive in the unified sequence.
	envIndex := make(map[string]int)

	for _, e := range chain {
		if e.Enabled != nil {
			p.Enabled = *e.Enabled
		}

		// share accumulates: a descendant may add namespaces but can never
		// revoke one granted by an ancestor.
		for _, s := range e.Share {
			kind := NamespaceKind(s)
			if !kind.IsValid() {
				return nil, &UnknownNamespaceError{Entry: e.Name, Value: s}
			}
			if !shared[kind] {
				shared[kind] = true
				p.Share = append(p.Share, kind)
			}
		}

		// Mount sequences concatenate ancestor-first, without deduplication.
		p.Bind = append(p.Bind, e.Bind...)
		p.RoBind = append(p.RoBind, e.RoBind...)
		p.DevBind = append(p.DevBind, e.DevBind...)
		p.Tmpfs = append(p.Tmpfs, e.Tmpfs...)

		for _, ev := range e.Env {
			mergeSet(p, envIndex, ev.Name, ev.Value)
		}
		for _, u := range e.UnsetEnv {
			mergeUnset(p, envIndex, u)
		}
	}

	return p, nil
}

// mergeSet applies one `env` assignment to the unified directive sequence.
// A re-assignment keeps the variable's first-declaration position and takes
// the new value; an assignment following an unset appends at the end so the
// later directive wins.
func mergeSet(p *ResolvedProfile, index map[string]int, name, value string) {
	if at, ok := index[name]; ok {
		if !p.Env[at].Unset {
			p.Env[at].Value = value
			return
		}
	}
	index[name] = len(p.Env)
	p.Env = append(p.Env, EnvDirective{Name: name, Value: value})
}

// mergeUnset applies one `unset_env` name. Unsets form a set union; an unset
// following an assignment appends at the end so the later directive wins.
func mergeUnset(p *ResolvedProfile, index map[string]int, name string) {
	if at, ok := index[name]; ok {
		if p.Env[at].Unset {
			return
		}
	}
	index[name] = len(p.Env)
	p.Env = append(p.Env, EnvDirective{Name: name, Unset: true})
}
