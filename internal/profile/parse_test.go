// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseBasicEntry(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte(`
node:
  share:
    - network
  bind:
    - $PWD
    - ~/.npm:/npm
  ro_bind:
    - /usr
  tmpfs:
    - /tmp
  env:
    NODE_ENV: development
  unset_env:
    - NPM_TOKEN
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	entry, ok := tree.Entry("node")
	if !ok {
		t.Fatal("Entry(node) not found")
	}
	if entry.IsModel {
		t.Error("entry without type attribute parsed as model")
	}
	if entry.Enabled != nil {
		t.Errorf("Enabled = %v, want nil (undeclared)", *entry.Enabled)
	}
	if want := []string{"network"}; !reflect.DeepEqual(entry.Share, want) {
		t.Errorf("Share = %v, want %v", entry.Share, want)
	}
	if want := []string{"$PWD", "~/.npm:/npm"}; !reflect.DeepEqual(entry.Bind, want) {
		t.Errorf("Bind = %v, want %v", entry.Bind, want)
	}
	if want := []EnvVar{{Name: "NODE_ENV", Value: "development"}}; !reflect.DeepEqual(entry.Env, want) {
		t.Errorf("Env = %v, want %v", entry.Env, want)
	}
	if want := []string{"NPM_TOKEN"}; !reflect.DeepEqual(entry.UnsetEnv, want) {
		t.Errorf("UnsetEnv = %v, want %v", entry.UnsetEnv, want)
	}
}

func TestParseModelAndExtends(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte(`
base:
  type: model
  ro_bind:
    - /usr
node:
  extends: base
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	base, _ := tree.Entry("base")
	if !base.IsModel {
		t.Error("base not parsed as model")
	}
	node, _ := tree.Entry("node")
	if node.Extends != "base" {
		t.Errorf("Extends = %q, want %q", node.Extends, "base")
	}
	if want := []string{"node"}; !reflect.DeepEqual(tree.Commands(), want) {
		t.Errorf("Commands() = %v, want %v", tree.Commands(), want)
	}
}

func TestParsePreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte(`
zeta:
alpha:
mid:
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := []string{"zeta", "alpha", "mid"}; !reflect.DeepEqual(tree.Names(), want) {
		t.Errorf("Names() = %v, want %v", tree.Names(), want)
	}
}

func TestParseEmptyAndNullEntries(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte("ls:\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	entry, ok := tree.Entry("ls")
	if !ok {
		t.Fatal("null-valued entry not registered")
	}
	if entry.Line != 1 {
		t.Errorf("Line = %d, want 1", entry.Line)
	}

	empty, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("Len() = %d, want 0", empty.Len())
	}
}

func TestParseDuplicateEntryRejected(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
node:
  share:
    - network
node:
  share:
    - pid
`))
	if err == nil {
		t.Fatal("Parse() accepted duplicate entry names")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if !errors.Is(err, ErrParse) {
		t.Error("errors.Is(err, ErrParse) = false")
	}
	if parseErr.Line != 5 {
		t.Errorf("Line = %d, want 5 (second declaration)", parseErr.Line)
	}
}

func TestParseMalformedAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "top level sequence", in: "- node\n- npm\n"},
		{name: "entry is scalar", in: "node: yes\n"},
		{name: "share as scalar", in: "node:\n  share: network\n"},
		{name: "bind as mapping", in: "node:\n  bind:\n    src: dst\n"},
		{name: "enabled as string", in: "node:\n  enabled: nope\n"},
		{name: "env as sequence", in: "node:\n  env:\n    - A=1\n"},
		{name: "env value is mapping", in: "node:\n  env:\n    A:\n      b: c\n"},
		{name: "invalid yaml", in: "node: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.in))
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error = %v, want ErrParse", tt.in, err)
			}
		})
	}
}

func TestParseIgnoresUnknownAttributes(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte(`
node:
  share:
    - network
  future_attribute: whatever
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	entry, _ := tree.Entry("node")
	if want := []string{"network"}; !reflect.DeepEqual(entry.Share, want) {
		t.Errorf("Share = %v, want %v", entry.Share, want)
	}
}

func TestParseEnvDuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte(`
node:
  env:
    A: first
    B: middle
    A: second
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	entry, _ := tree.Entry("node")
	want := []EnvVar{{Name: "A", Value: "second"}, {Name: "B", Value: "middle"}}
	if !reflect.DeepEqual(entry.Env, want) {
		t.Errorf("Env = %v, want %v", entry.Env, want)
	}
}
