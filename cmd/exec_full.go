// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/retr0h/virt/internal/cli"
	"github.com/retr0h/virt/internal/provider/command"
)

// execFullCmd represents the exec full command.
var execFullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run a command with separate stdout and stderr",
	Long: `Run a command with a timeout and report stdout, stderr, exit code and
duration separately. A command that times out is killed.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, end := startSpan(cmd.Context(), "exec full")
		defer end()

		name, _ := cmd.Flags().GetString("command")
		args, _ := cmd.Flags().GetStringSlice("args")
		cwd, _ := cmd.Flags().GetString("cwd")
		timeout, _ := cmd.Flags().GetInt("timeout")
		useShell, _ := cmd.Flags().GetBool("shell")

		provider := newCommandProvider()
		result, err := runUntilInterrupted(ctx, func() (*command.Result, error) {
			if useShell {
				return provider.Shell(command.ShellParams{
					Command: name,
					Cwd:     cwd,
					Timeout: timeout,
				})
			}

			return provider.Exec(command.ExecParams{
				Command: name,
				Args:    args,
				Cwd:     cwd,
				Timeout: timeout,
			})
		})
		if err != nil {
			cli.LogFatal(logger, "failed to execute command", err, "command", name)
		}

		if jsonOutput {
			printJSON(result)
			return
		}

		cli.PrintCompactTable([]cli.Section{{
			Headers: []string{"STDOUT", "STDERR", "EXIT CODE", "DURATION"},
			Rows: [][]string{{
				result.Stdout,
				result.Stderr,
				cli.FormatExitCode(result.ExitCode),
				cli.FormatDurationMs(result.DurationMs),
			}},
		}})
	},
}

func init() {
	execCmd.AddCommand(execFullCmd)

	execFullCmd.PersistentFlags().
		String("command", "", "The command to execute (required)")
	execFullCmd.PersistentFlags().
		StringSlice("args", []string{}, "Command arguments")
	execFullCmd.PersistentFlags().
		String("cwd", "", "Working directory for the command")
	execFullCmd.PersistentFlags().
		Int("timeout", 30, "Timeout in seconds")
	execFullCmd.PersistentFlags().
		Bool("shell", false, "Pass --command to the configured shell")

	_ = execFullCmd.MarkPersistentFlagRequired("command")
}
