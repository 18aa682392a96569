// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shroud/internal/shellhook"

	"github.com/spf13/cobra"
)

var (
	// shellHookCmd groups the shell integration operations.
	shellHookCmd = &cobra.Command{
		Use:   "shell-hook",
		Short: "Shell integration for transparent command wrapping",
	}

	shellHookGetCmd = &cobra.Command{
		Use:   "get <shell>",
		Short: "Emit the integration hook script for a shell",
		Long: `Print the hook script for the given shell on stdout. The hook defines
a function for every enabled command so that typing the bare command
name transparently routes through 'shroud command exec', and refreshes
the wrapped set on every directory change.

Install it by eval-ing the output from your shell's rc file:

  eval "$(shroud shell-hook get bash)"    # ~/.bashrc
  eval "$(shroud shell-hook get zsh)"     # ~/.zshrc
  shroud shell-hook get fish | source     # ~/.config/fish/config.fish

Set SHROUD_DEBUG=1 to trace what the hook wraps and unwraps.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: shellNames(),
		RunE:      runShellHookGet,
	}
)

func init() {
	shellHookCmd.AddCommand(shellHookGetCmd)
}

func runShellHookGet(cmd *cobra.Command, args []string) error {
	shell, err := shellhook.Parse(args[0])
	if err != nil {
		return err
	}

	script, err := shell.Script()
	if err != nil {
		return err
	}
	fmt.Print(script)
	return nil
}

func shellNames() []string {
	var names []string
	for _, s := range shellhook.Shells() {
		names = append(names, string(s))
	}
	return names
}
