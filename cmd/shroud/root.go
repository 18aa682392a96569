// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for shroud.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"shroud/internal/config"
	"shroud/internal/issue"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool

	// toolCfg is the loaded tool configuration, populated by initRootConfig.
	toolCfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "shroud",
		Short: "A declarative per-command sandbox wrapper",
		Long: TitleStyle.Render("shroud") + SubtitleStyle.Render(" - A declarative per-command sandbox wrapper") + `

shroud reads a declarative configuration describing which commands to
wrap and what each command's sandbox should look like, then delegates
the actual isolation to bubblewrap (bwrap). By default everything is
isolated: a command with an empty 'share' list gets all six kernel
namespaces unshared.

Commands are declared in '.shroud.yaml' files discovered upward from
the current directory, with '~/.config/shroud/default.yaml' as the
user-level fallback.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a .shroud.yaml in your project directory
  2. Declare commands and the mounts/namespaces they need
  3. Run them through: shroud command exec <name> [args...]

` + SubtitleStyle.Render("Examples:") + `
  shroud command list       List all configured commands
  shroud command show node  Print the bwrap line for 'node'
  shroud command exec node script.js
  shroud config init        Create a starter .shroud.yaml
  shroud shell-hook get bash  Emit the bash integration hook`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(shellHookCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig loads the tool configuration and wires logging.
func initRootConfig() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if cfg != nil {
		toolCfg = cfg
		if !verbose {
			verbose = cfg.UI.Verbose
		}
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
	} else {
		logger.SetLevel(charmlog.WarnLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
