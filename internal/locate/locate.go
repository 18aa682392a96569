// SPDX-License-Identifier: MPL-2.0

// Package locate finds the effective sandbox configuration source for a
// working directory. It only probes the filesystem; parsing and resolution
// happen elsewhere.
package locate

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// LocalConfigName is the per-project configuration file, discovered by
	// walking from the working directory up to the filesystem root.
	LocalConfigName = ".shroud.yaml"

	// userConfigDir and userConfigName form the fixed user-level fallback
	// path under the home directory.
	userConfigDir  = ".config/shroud"
	userConfigName = "default.yaml"
)

const (
	// TierLocal marks a source discovered by the upward directory search.
	TierLocal Tier = iota
	// TierUser marks the user-level fallback source.
	TierUser
)

// ErrNoConfig reports that neither a local nor a user configuration exists.
// It is a soft condition, not a failure: callers treat every command as
// unwrapped.
var ErrNoConfig = errors.New("no shroud configuration found")

type (
	// Tier identifies which kind of configuration source was selected.
	// Exactly one source is selected per invocation; a local source
	// replaces, rather than extends, the user-level one.
	Tier int

	// Source is the selected configuration source.
	Source struct {
		Path string
		Tier Tier
	}
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "local"
	case TierUser:
		return "user"
	default:
		return "unknown"
	}
}

// Locate selects the configuration source for the given working directory
// and home directory. It checks the working directory and each of its
// parents for the local configuration file, then falls back to the fixed
// user-level path. Both inputs are explicit so the search is a pure function
// of its arguments: the same directories always yield the same source.
func Locate(workDir, home string) (Source, error) {
	dir := filepath.Clean(workDir)
	for {
		path := filepath.Join(dir, LocalConfigName)
		if fileExists(path) {
			return Source{Path: path, Tier: TierLocal}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home != "" {
		path := filepath.Join(home, userConfigDir, userConfigName)
		if fileExists(path) {
			return Source{Path: path, Tier: TierUser}, nil
		}
	}

	return Source{}, ErrNoConfig
}

// UserConfigPath returns the fixed user-level fallback path for the given
// home directory.
func UserConfigPath(home string) string {
	return filepath.Join(home, userConfigDir, userConfigName)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
