// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shroud/internal/issue"
)

// loadFrom points config loading at a scratch directory holding the given
// file content ("" for no file), restoring the override afterwards.
func loadFrom(t *testing.T, content string) (*Config, error) {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	SetConfigDirOverride(dir)
	t.Cleanup(func() { SetConfigDirOverride("") })
	return Load()
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadFrom(t, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Verbose {
		t.Error("UI.Verbose default = true, want false")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme default = %q, want %q", cfg.UI.ColorScheme, ColorSchemeAuto)
	}
	if cfg.Bwrap.Path != "" {
		t.Errorf("Bwrap.Path default = %q, want empty", cfg.Bwrap.Path)
	}
}

func TestLoadReadsFile(t *testing.T) {
	cfg, err := loadFrom(t, `
ui:
  verbose: true
  color_scheme: Dark
bwrap:
  path: /usr/local/bin/bwrap
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI.ColorScheme = %q, want %q (case-insensitive)", cfg.UI.ColorScheme, ColorSchemeDark)
	}
	if cfg.Bwrap.Path != "/usr/local/bin/bwrap" {
		t.Errorf("Bwrap.Path = %q, want /usr/local/bin/bwrap", cfg.Bwrap.Path)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := loadFrom(t, "ui:\n  verbose: true\n")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("unset key lost its default: ColorScheme = %q", cfg.UI.ColorScheme)
	}
}

func TestLoadRejectsInvalidColorScheme(t *testing.T) {
	_, err := loadFrom(t, "ui:\n  color_scheme: neon\n")
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Fatalf("Load() error = %v, want ErrInvalidColorScheme", err)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	if _, err := loadFrom(t, "ui: [\n"); err == nil {
		t.Fatal("Load() accepted malformed YAML")
	}
}

func TestLoadFailuresAreActionable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "ui: [\n"},
		{name: "invalid color scheme", content: "ui:\n  color_scheme: neon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(t, tt.content)
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error = %T, want *issue.ActionableError", err)
			}
			if !ae.HasSuggestions() {
				t.Error("load failure carries no suggestions")
			}
			if ae.Resource == "" {
				t.Error("load failure names no config file")
			}
		})
	}
}

func TestColorSchemeIsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if ok, _ := s.IsValid(); !ok {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}
	if ok, errs := ColorScheme("neon").IsValid(); ok || len(errs) != 1 {
		t.Error("IsValid(neon) accepted an invalid scheme")
	}
}
