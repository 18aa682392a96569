// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"shroud/internal/issue"
	"shroud/internal/locate"
	"shroud/internal/profile"
	"shroud/internal/registry"
	"shroud/internal/sandbox"
	"shroud/pkg/types"
)

// session is one CLI invocation's view of the selected configuration source:
// the file that was picked, its parsed tree, and the resolved command set.
type session struct {
	source   locate.Source
	tree     *profile.Tree
	registry *registry.Registry
}

// loadSession locates, reads, parses and resolves the effective
// configuration. Location and parse failures abort the whole session;
// per-command resolution failures do not (they live on registry entries).
func loadSession() (*session, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// A missing home only disables the user-level fallback tier.
		home = ""
	}

	source, err := locate.Locate(workDir, home)
	if err != nil {
		return nil, err
	}
	slog.Debug("selected configuration source", "path", source.Path, "tier", source.Tier.String())

	data, err := os.ReadFile(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source.Path, err)
	}

	tree, err := profile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source.Path, err)
	}

	return &session{
		source:   source,
		tree:     tree,
		registry: registry.Build(tree),
	}, nil
}

// expandContext captures the process state placeholder expansion may consult.
// Taken once per invocation so every mount of one exec sees the same values.
func expandContext() (sandbox.ExpandContext, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return sandbox.ExpandContext{}, fmt.Errorf("failed to determine working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				environ[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	return sandbox.ExpandContext{WorkDir: workDir, Home: home, Environ: environ}, nil
}

// issueFor maps an engine error to its catalog entry, if one exists.
func issueFor(err error) (*issue.Issue, bool) {
	var id issue.Id
	switch {
	case errors.Is(err, locate.ErrNoConfig):
		id = issue.NoConfigId
	case errors.Is(err, profile.ErrParse):
		id = issue.ConfigParseErrorId
	case errors.Is(err, profile.ErrCycle):
		id = issue.ExtendsCycleId
	case errors.Is(err, profile.ErrUnknownModel):
		id = issue.UnknownModelId
	case errors.Is(err, profile.ErrUnknownNamespace):
		id = issue.UnknownNamespaceId
	case errors.Is(err, sandbox.ErrInvalidMountSpec):
		id = issue.InvalidMountSpecId
	case errors.Is(err, sandbox.ErrSpawn):
		id = issue.BwrapNotFoundId
	default:
		return nil, false
	}
	return issue.Lookup(id)
}

// renderIssue prints the catalog card for an engine error to stderr, when the
// error has one. Rendering failures degrade to the raw Markdown text.
func renderIssue(err error) {
	i, ok := issueFor(err)
	if !ok {
		return
	}
	rendered, rerr := i.Render("auto")
	if rerr != nil {
		rendered = string(i.MarkdownMsg())
	}
	fmt.Fprintln(os.Stderr, rendered)
}

// engineExitCode classifies an engine failure into its reserved exit code.
func engineExitCode(err error) types.ExitCode {
	if errors.Is(err, sandbox.ErrSpawn) {
		return types.CodeSpawnFailure
	}
	return types.CodeResolutionFailure
}

// bwrapPath returns the configured isolation primitive path, empty for
// PATH lookup.
func bwrapPath() string {
	return toolCfg.Bwrap.Path
}
