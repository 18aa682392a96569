// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"shroud/internal/locate"
	"shroud/internal/profile"
	"shroud/internal/sandbox"
	"shroud/pkg/types"

	"github.com/spf13/cobra"
)

var (
	listSimple bool

	// commandCmd groups the per-command operations.
	commandCmd = &cobra.Command{
		Use:   "command",
		Short: "Inspect and execute configured commands",
	}

	commandListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the commands declared by the effective configuration",
		Long: `List every command the effective configuration declares, with its
status: enabled, disabled, or failed to resolve.

With --simple, print only the enabled command names, one per line. This
is the machine-readable form the shell hooks consume.`,
		Args: cobra.NoArgs,
		RunE: runCommandList,
	}

	commandShowCmd = &cobra.Command{
		Use:   "show <command> [args...]",
		Short: "Print the bwrap invocation a command would run under",
		Long: `Resolve one command and print the exact bwrap command line that
'command exec' would spawn for it, shell-quoted for human inspection.
Arguments after the command name are included in the rendered vector.
Nothing is executed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommandShow,
	}

	commandExecCmd = &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Execute a command inside its declared sandbox",
		Long: `Resolve the named command against the effective configuration,
synthesize its bwrap invocation, and run it. Arguments after the command
name are passed through to the sandboxed program verbatim.

Reserved exit codes distinguish engine failures from the program's own:
  125  the configuration could not be resolved
  126  bwrap could not be started
  127  the command is not configured, or is disabled
Any other exit code is the sandboxed program's, unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommandExec,
	}
)

func init() {
	commandListCmd.Flags().BoolVar(&listSimple, "simple", false, "print enabled command names only, one per line")
	commandShowCmd.Flags().SetInterspersed(false)
	commandExecCmd.Flags().SetInterspersed(false)

	commandCmd.AddCommand(commandListCmd)
	commandCmd.AddCommand(commandShowCmd)
	commandCmd.AddCommand(commandExecCmd)
}

func runCommandList(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		if listSimple {
			// The hooks treat "nothing to wrap" as a normal state; any kind
			// of broken or missing configuration must not break the shell.
			return nil
		}
		if errors.Is(err, locate.ErrNoConfig) {
			renderIssue(err)
			return nil
		}
		renderIssue(err)
		return err
	}

	if listSimple {
		for _, name := range sess.registry.EnabledNames() {
			fmt.Println(name)
		}
		return nil
	}

	fmt.Println(SubtitleStyle.Render("Configuration: ") + sess.source.Path)
	fmt.Println()

	entries := sess.registry.Entries()
	if len(entries) == 0 {
		fmt.Println("No commands configured.")
		return nil
	}

	for _, e := range entries {
		switch {
		case e.Err != nil:
			fmt.Printf("  %s %s  %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(e.Name), VerboseStyle.Render(e.Err.Error()))
		case !e.Profile.Enabled:
			fmt.Printf("  %s %s  %s\n", WarningStyle.Render("-"), CmdStyle.Render(e.Name), VerboseStyle.Render("disabled"))
		default:
			fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(e.Name))
		}
	}
	return nil
}

func runCommandShow(cmd *cobra.Command, args []string) error {
	name := args[0]
	cmdArgs := args[1:]

	sess, err := loadSession()
	if err != nil {
		renderIssue(err)
		return err
	}

	entry, ok := sess.registry.Lookup(name)
	if !ok {
		cmd.SilenceUsage = true
		return &ExitError{
			Code: types.CodeUnknownCommand,
			Err:  fmt.Errorf("command %q is not configured in %s", name, sess.source.Path),
		}
	}
	if entry.Err != nil {
		renderIssue(entry.Err)
		return entry.Err
	}
	if !entry.Profile.Enabled {
		// Same refusal as exec: a disabled profile is never selected, not
		// even for display.
		cmd.SilenceUsage = true
		return &ExitError{
			Code: types.CodeUnknownCommand,
			Err:  fmt.Errorf("command %q is disabled in %s", name, sess.source.Path),
		}
	}

	ctx, err := expandContext()
	if err != nil {
		return err
	}

	inv, err := sandbox.Synthesize(entry.Profile, ctx, name, cmdArgs)
	if err != nil {
		renderIssue(err)
		return err
	}

	printProfileSummary(entry.Profile)
	fmt.Println(inv.CommandLine(effectiveBwrapName()))
	return nil
}

func runCommandExec(cmd *cobra.Command, args []string) error {
	name := args[0]
	cmdArgs := args[1:]

	fail := func(code types.ExitCode, err error) error {
		cmd.SilenceUsage = true
		renderIssue(err)
		return &ExitError{Code: code, Err: err}
	}

	sess, err := loadSession()
	if err != nil {
		return fail(engineExitCode(err), err)
	}

	entry, ok := sess.registry.Lookup(name)
	if !ok {
		cmd.SilenceUsage = true
		return &ExitError{
			Code: types.CodeUnknownCommand,
			Err:  fmt.Errorf("command %q is not configured in %s", name, sess.source.Path),
		}
	}
	if entry.Err != nil {
		return fail(engineExitCode(entry.Err), entry.Err)
	}
	if !entry.Profile.Enabled {
		cmd.SilenceUsage = true
		return &ExitError{
			Code: types.CodeUnknownCommand,
			Err:  fmt.Errorf("command %q is disabled in %s", name, sess.source.Path),
		}
	}

	ctx, err := expandContext()
	if err != nil {
		return fail(types.CodeResolutionFailure, err)
	}

	inv, err := sandbox.Synthesize(entry.Profile, ctx, name, cmdArgs)
	if err != nil {
		return fail(types.CodeResolutionFailure, err)
	}

	runner := &sandbox.Runner{BwrapPath: bwrapPath()}
	code, err := runner.Run(cmd.Context(), inv)
	if err != nil {
		return fail(engineExitCode(err), err)
	}
	if !code.IsSuccess() {
		// The child's own failure: pass the code through without any output
		// of shroud's own.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: code}
	}
	return nil
}

// printProfileSummary prints a short human-readable view of a resolved
// profile before the raw command line.
func printProfileSummary(p *profile.ResolvedProfile) {
	var shared []string
	for _, k := range p.Share {
		shared = append(shared, k.String())
	}
	sharedText := "none (fully isolated)"
	if len(shared) > 0 {
		sharedText = strings.Join(shared, ", ")
	}
	fmt.Println(SubtitleStyle.Render("Shared namespaces: ") + sharedText)
	fmt.Println(SubtitleStyle.Render("Mounts: ") + fmt.Sprintf("%d bind, %d ro-bind, %d dev-bind, %d tmpfs",
		len(p.Bind), len(p.RoBind), len(p.DevBind), len(p.Tmpfs)))
	fmt.Println()
}

// effectiveBwrapName is the executable name shown in rendered command lines.
func effectiveBwrapName() string {
	if path := bwrapPath(); path != "" {
		return path
	}
	return sandbox.DefaultBwrapName
}
