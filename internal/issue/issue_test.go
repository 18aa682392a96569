// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupCoversWholeCatalog(t *testing.T) {
	t.Parallel()

	ids := []Id{
		NoConfigId, ConfigParseErrorId, CommandNotFoundId, CommandDisabledId,
		ExtendsCycleId, UnknownModelId, UnknownNamespaceId, InvalidMountSpecId,
		BwrapNotFoundId,
	}
	for _, id := range ids {
		i, ok := Lookup(id)
		if !ok {
			t.Errorf("Lookup(%d) missing catalog entry", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("Lookup(%d).Id() = %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty message", id)
		}
	}

	if _, ok := Lookup(Id(9999)); ok {
		t.Error("Lookup(9999) = ok, want miss")
	}
}

func TestActionableErrorBuilder(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying failure")
	err := NewErrorContext().
		WithOperation("resolve command").
		WithResource("node").
		WithSuggestion("Run 'shroud config check'").
		Wrap(cause).
		BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() type = %T, want *ActionableError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if want := "failed to resolve command: node: underlying failure"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !ae.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}

	formatted := ae.Format(true)
	if !strings.Contains(formatted, "shroud config check") {
		t.Errorf("Format() missing suggestion: %q", formatted)
	}
	if !strings.Contains(formatted, "Error chain:") {
		t.Errorf("verbose Format() missing error chain: %q", formatted)
	}
	if strings.Contains(ae.Format(false), "Error chain:") {
		t.Error("non-verbose Format() includes error chain")
	}
}

func TestErrorContextRequiresOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("node").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "anything") != nil {
		t.Error("WrapWithOperation(nil) != nil")
	}
	cause := errors.New("boom")
	ae := WrapWithOperation(cause, "load configuration")
	if ae == nil || !errors.Is(ae, cause) {
		t.Error("WrapWithOperation lost the cause")
	}
}
