// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// mustParse is a test helper building a tree from YAML text.
func mustParse(t *testing.T, text string) *Tree {
	t.Helper()
	tree, err := Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tree
}

func TestResolveDefaultsToFullyIsolatedAndEnabled(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "ls:\n")
	p, err := Resolve(tree, "ls")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !p.Enabled {
		t.Error("Enabled = false, want true by default")
	}
	if len(p.Share) != 0 {
		t.Errorf("Share = %v, want empty (all namespaces isolated)", p.Share)
	}
	if len(p.Bind)+len(p.RoBind)+len(p.DevBind)+len(p.Tmpfs)+len(p.Env) != 0 {
		t.Error("empty entry resolved with non-empty mounts or env")
	}
}

func TestResolveMergesChainBaseFirst(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, `
grandparent:
  type: model
  ro_bind:
    - /usr
  share:
    - user
parent:
  type: model
  extends: grandparent
  ro_bind:
    - /lib
  share:
    - network
child:
  extends: parent
  ro_bind:
    - /usr
  bind:
    - $PWD
`)
	p, err := Resolve(tree, "child")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Concatenation is ancestor-first and keeps duplicates.
	if want := []string{"/usr", "/lib", "/usr"}; !reflect.DeepEqual(p.RoBind, want) {
		t.Errorf("RoBind = %v, want %v", p.RoBind, want)
	}
	// Share is an additive union in first-grant order.
	if want := []NamespaceKind{NamespaceUser, NamespaceNetwork}; !reflect.DeepEqual(p.Share, want) {
		t.Errorf("Share = %v, want %v", p.Share, want)
	}
	if !p.Shares(NamespaceNetwork) || p.Shares(NamespacePID) {
		t.Error("Shares() disagrees with merged share set")
	}
}

func TestResolveShareCannotBeRevoked(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, `
networked:
  type: model
  share:
    - network
child:
  extends: networked
  share:
    - network
    - pid
`)
	p, err := Resolve(tree, "child")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := []NamespaceKind{NamespaceNetwork, NamespacePID}; !reflect.DeepEqual(p.Share, want) {
		t.Errorf("Share = %v, want %v (union, no duplicates)", p.Share, want)
	}
}

func TestResolveEnabledScalarOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{
			name: "descendant disables",
			in:   "base:\n  type: model\nchild:\n  extends: base\n  enabled: false\n",
			want: false,
		},
		{
			name: "descendant re-enables over disabled ancestor",
			in:   "base:\n  type: model\n  enabled: false\nchild:\n  extends: base\n  enabled: true\n",
			want: true,
		},
		{
			name: "silence inherits ancestor value",
			in:   "base:\n  type: model\n  enabled: false\nchild:\n  extends: base\n",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tt.in)
			p, err := Resolve(tree, "child")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if p.Enabled != tt.want {
				t.Errorf("Enabled = %v, want %v", p.Enabled, tt.want)
			}
		})
	}
}

func TestResolveEnvMergeKeepsFirstPositionLastValue(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, `
base:
  type: model
  env:
    A: "1"
    B: "2"
child:
  extends: base
  env:
    C: "3"
    A: "9"
`)
	p, err := Resolve(tree, "child")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []EnvDirective{
		{Name: "A", Value: "9"},
		{Name: "B", Value: "2"},
		{Name: "C", Value: "3"},
	}
	if !reflect.DeepEqual(p.Env, want) {
		t.Errorf("Env = %v, want %v", p.Env, want)
	}
}

func TestResolveUnifiedEnvUnsetSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []EnvDirective
	}{
		{
			name: "descendant unset wins over ancestor set",
			in:   "base:\n  type: model\n  env:\n    TOKEN: secret\nchild:\n  extends: base\n  unset_env:\n    - TOKEN\n",
			want: []EnvDirective{
				{Name: "TOKEN", Value: "secret"},
				{Name: "TOKEN", Unset: true},
			},
		},
		{
			name: "descendant set wins over ancestor unset",
			in:   "base:\n  type: model\n  unset_env:\n    - TOKEN\nchild:\n  extends: base\n  env:\n    TOKEN: fresh\n",
			want: []EnvDirective{
				{Name: "TOKEN", Unset: true},
				{Name: "TOKEN", Value: "fresh"},
			},
		},
		{
			name: "repeated unset collapses",
			in:   "base:\n  type: model\n  unset_env:\n    - TOKEN\nchild:\n  extends: base\n  unset_env:\n    - TOKEN\n",
			want: []EnvDirective{
				{Name: "TOKEN", Unset: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tt.in)
			p, err := Resolve(tree, "child")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(p.Env, tt.want) {
				t.Errorf("Env = %v, want %v", p.Env, tt.want)
			}
		})
	}
}

func TestResolveUnknownTarget(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "child:\n  extends: ghost\n")
	_, err := Resolve(tree, "child")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("Resolve() error = %v, want ErrUnknownModel", err)
	}
	var umErr *UnknownModelError
	if !errors.As(err, &umErr) {
		t.Fatalf("error type = %T, want *UnknownModelError", err)
	}
	if umErr.Entry != "child" || umErr.Target != "ghost" {
		t.Errorf("UnknownModelError = %+v, want Entry=child Target=ghost", umErr)
	}
}

func TestResolveUnknownName(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "ls:\n")
	if _, err := Resolve(tree, "ghost"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("Resolve(ghost) error = %v, want ErrUnknownModel", err)
	}
}

func TestResolveCycleDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		entry    string
		wantPath string
	}{
		{
			name:     "self cycle",
			in:       "a:\n  extends: a\n",
			entry:    "a",
			wantPath: "a -> a",
		},
		{
			name:     "two node cycle",
			in:       "a:\n  extends: b\nb:\n  extends: a\n",
			entry:    "a",
			wantPath: "a -> b -> a",
		},
		{
			name:     "cycle reached through a tail",
			in:       "entry:\n  extends: a\na:\n  extends: b\nb:\n  extends: a\n",
			entry:    "entry",
			wantPath: "a -> b -> a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tt.in)
			_, err := Resolve(tree, tt.entry)
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("Resolve() error = %v, want ErrCycle", err)
			}
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("error type = %T, want *CycleError", err)
			}
			if got := strings.Join(cycleErr.Path, " -> "); got != tt.wantPath {
				t.Errorf("cycle path = %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestResolveUnknownNamespace(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "node:\n  share:\n    - net\n")
	_, err := Resolve(tree, "node")
	if !errors.Is(err, ErrUnknownNamespace) {
		t.Fatalf("Resolve() error = %v, want ErrUnknownNamespace", err)
	}
	var nsErr *UnknownNamespaceError
	if !errors.As(err, &nsErr) {
		t.Fatalf("error type = %T, want *UnknownNamespaceError", err)
	}
	if nsErr.Value != "net" {
		t.Errorf("Value = %q, want %q", nsErr.Value, "net")
	}
}

func TestResolveIsIndependentPerEntry(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, `
broken:
  extends: ghost
fine:
  share:
    - network
`)
	if _, err := Resolve(tree, "broken"); err == nil {
		t.Fatal("Resolve(broken) succeeded, want error")
	}
	if _, err := Resolve(tree, "fine"); err != nil {
		t.Errorf("Resolve(fine) error = %v, want nil", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	t.Parallel()

	text := `
base:
  type: model
  share:
    - user
  ro_bind:
    - /usr
    - /lib
node:
  extends: base
  share:
    - network
  bind:
    - $PWD
  env:
    A: "1"
`
	first, err := Resolve(mustParse(t, text), "node")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Resolve(mustParse(t, text), "node")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution differs between runs: %+v vs %+v", first, again)
		}
	}
}
