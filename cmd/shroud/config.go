// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shroud/internal/locate"
	"shroud/internal/profile"
	"shroud/internal/registry"
	"shroud/pkg/types"

	"github.com/spf13/cobra"
)

//go:embed templates
var templatesFS embed.FS

var (
	initForce    bool
	initTemplate string
	checkSilent  bool

	// configCmd groups operations on the sandbox configuration files.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Create, validate and locate sandbox configuration files",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a new .shroud.yaml in the current directory",
		Long: `Create a new .shroud.yaml in the current directory with example
entries to get started quickly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigInit,
	}

	configCheckCmd = &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a configuration file",
		Long: `Parse the given configuration file (or the effective one when no path
is given) and resolve every command it declares, reporting each entry's
status. Exits non-zero if the file cannot be parsed or any entry fails
to resolve.

With --silent, print nothing and communicate only through the exit
code. Useful in hooks and CI.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigCheck,
	}

	configWhichCmd = &cobra.Command{
		Use:   "which",
		Short: "Print the configuration file currently in effect",
		Args:  cobra.NoArgs,
		RunE:  runConfigWhich,
	}
)

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing .shroud.yaml")
	configInitCmd.Flags().StringVarP(&initTemplate, "template", "t", "default", "template to use (default, nodejs, python, go, rust)")
	configCheckCmd.Flags().BoolVar(&checkSilent, "silent", false, "suppress output, report through the exit code only")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configWhichCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	filename := locate.LocalConfigName
	if len(args) > 0 {
		filename = args[0]
	}

	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	content, err := templatesFS.ReadFile("templates/" + initTemplate + ".yaml")
	if err != nil {
		return fmt.Errorf("unknown template %q (available: %s)", initTemplate, strings.Join(templateNames(), ", "))
	}

	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit the file to declare the commands you want wrapped")
	fmt.Println("  2. Run 'shroud command list' to see their status")
	fmt.Println("  3. Run 'shroud command exec <name>' to run one sandboxed")

	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	var (
		path string
		tree *profile.Tree
	)

	if len(args) > 0 {
		path = args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return checkFailure(cmd, fmt.Errorf("failed to read %s: %w", path, err))
		}
		tree, err = profile.Parse(data)
		if err != nil {
			return checkFailure(cmd, fmt.Errorf("%s: %w", path, err))
		}
	} else {
		sess, err := loadSession()
		if err != nil {
			return checkFailure(cmd, err)
		}
		path = sess.source.Path
		tree = sess.tree
	}

	reg := registry.Build(tree)

	if !checkSilent {
		fmt.Println(SubtitleStyle.Render("Checking: ") + path)
		fmt.Println()
		for _, e := range reg.Entries() {
			switch {
			case e.Err != nil:
				fmt.Printf("  %s %s  %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(e.Name), VerboseStyle.Render(e.Err.Error()))
			case !e.Profile.Enabled:
				fmt.Printf("  %s %s  %s\n", WarningStyle.Render("-"), CmdStyle.Render(e.Name), VerboseStyle.Render("disabled"))
			default:
				fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(e.Name))
			}
		}
		fmt.Println()
	}

	if failed := reg.Errors(); len(failed) > 0 {
		err := fmt.Errorf("%d of %d entries failed to resolve", len(failed), reg.Len())
		return checkFailure(cmd, err)
	}

	if !checkSilent {
		fmt.Println(SuccessStyle.Render("✓") + " Configuration is valid")
	}
	return nil
}

// checkFailure reports a check result without usage noise, honoring --silent.
func checkFailure(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	if checkSilent {
		cmd.SilenceErrors = true
	} else if !errors.Is(err, locate.ErrNoConfig) {
		renderIssue(err)
	}
	return err
}

func runConfigWhich(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	source, err := locate.Locate(workDir, home)
	if err != nil {
		if errors.Is(err, locate.ErrNoConfig) {
			// Stdout stays empty so scripts can consume it; the explanation
			// goes to stderr and the exit code says NoConfig.
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			fmt.Fprintln(os.Stderr, "No shroud configuration is in effect.")
			fmt.Fprintln(os.Stderr, SubtitleStyle.Render("Searched: ")+locate.LocalConfigName+" upward from "+workDir)
			if home != "" {
				fmt.Fprintln(os.Stderr, SubtitleStyle.Render("Fallback: ")+locate.UserConfigPath(home))
			}
			return &ExitError{Code: types.CodeResolutionFailure, Err: err}
		}
		return err
	}

	fmt.Println(source.Path)
	fmt.Println(SubtitleStyle.Render("Tier: ") + source.Tier.String())
	return nil
}

// templateNames lists the embedded starter templates.
func templateNames() []string {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
