// SPDX-License-Identifier: MPL-2.0

// Package config loads shroud's own tool configuration from
// ~/.config/shroud/config.yaml. This is deliberately separate from the
// sandbox profile files: tool configuration tunes the CLI (verbosity, color
// scheme, bwrap location), while profile files declare per-command sandbox
// policy and have their own strict parser in internal/profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shroud/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "shroud"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

// ErrInvalidColorScheme is the sentinel error wrapped by InvalidColorSchemeError.
var ErrInvalidColorScheme = errors.New("invalid color scheme")

// configDirOverride allows tests to point config loading at a scratch
// directory.
var configDirOverride string

type (
	// ColorScheme selects terminal color handling for CLI output.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// UIConfig tunes CLI output.
	UIConfig struct {
		// Verbose enables debug logging without the --verbose flag.
		Verbose bool `mapstructure:"verbose"`
		// ColorScheme selects the output color scheme.
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
	}

	// BwrapConfig locates the isolation primitive.
	BwrapConfig struct {
		// Path is an explicit bwrap executable path; empty means look up
		// "bwrap" on PATH at execution time.
		Path string `mapstructure:"path"`
	}

	// Config is shroud's tool configuration.
	Config struct {
		UI    UIConfig    `mapstructure:"ui"`
		Bwrap BwrapConfig `mapstructure:"bwrap"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for
// programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the ColorScheme is one of the known values.
func (s ColorScheme) IsValid() (bool, []error) {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	}
	return false, []error{&InvalidColorSchemeError{Value: s}}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// SetConfigDirOverride points config loading at an alternate directory.
// Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// ConfigDir returns shroud's configuration directory: $XDG_CONFIG_HOME/shroud,
// defaulting to ~/.config/shroud.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// Load reads the tool configuration, applying defaults for anything the file
// does not set. A missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("bwrap.path", defaults.Bwrap.Path)

	cfgDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(cfgDir)

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, issue.NewErrorContext().
				WithOperation("read tool configuration").
				WithResource(cfgPath).
				WithSuggestion("Check the file for YAML syntax errors").
				WithSuggestion("Remove the file to fall back to defaults").
				Wrap(err).
				BuildError()
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("decode tool configuration").
			WithResource(cfgPath).
			WithSuggestion("Check the ui and bwrap sections against the documented keys").
			Wrap(err).
			BuildError()
	}

	cfg.UI.ColorScheme = ColorScheme(strings.ToLower(string(cfg.UI.ColorScheme)))
	if ok, errs := cfg.UI.ColorScheme.IsValid(); !ok {
		return nil, issue.NewErrorContext().
			WithOperation("validate tool configuration").
			WithResource(cfgPath).
			WithSuggestion("Set ui.color_scheme to one of: auto, dark, light").
			Wrap(errs[0]).
			BuildError()
	}

	return cfg, nil
}
