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
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retr0h/virt/internal/cli"
	"github.com/retr0h/virt/internal/provider/command"
)

// execRunCmd represents the exec run command.
var execRunCmd = &cobra.Command{
	Use:   "run [flags] -- COMMAND [ARGS...]",
	Short: "Run a command and wait for it",
	Long: `Run a command to completion and print its output. Stderr is merged
into stdout. The command's exit status becomes the CLI's exit status.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, end := startSpan(cmd.Context(), "exec run")
		defer end()

		useShell, _ := cmd.Flags().GetBool("shell")
		cwd, _ := cmd.Flags().GetString("cwd")
		maxLines, _ := cmd.Flags().GetInt("max-lines")

		params := command.RunParams{
			Command:  strings.Join(args, " "),
			Shell:    useShell,
			Cwd:      cwd,
			MaxLines: maxLines,
		}

		provider := newCommandProvider()
		result, err := runUntilInterrupted(ctx, func() (*command.Result, error) {
			return provider.Run(params)
		})
		if err != nil {
			cli.LogFatal(logger, "failed to run command", err, "command", params.Command)
		}

		logger.DebugContext(ctx, "command finished",
			slog.String("command", params.Command),
			slog.Int("exit_code", result.ExitCode),
		)

		if jsonOutput {
			printJSON(result)
		} else {
			fmt.Print(result.Stdout)
			fmt.Println()
			cli.PrintKV(
				"Exit Code", cli.FormatExitCode(result.ExitCode),
				"Duration", cli.FormatDurationMs(result.DurationMs),
			)
		}

		if result.ExitCode != 0 {
			cli.Exit(exitStatus(result.ExitCode))
		}
	},
}

func init() {
	execCmd.AddCommand(execRunCmd)

	execRunCmd.PersistentFlags().
		Bool("shell", false, "Run the command line through the configured shell")
	execRunCmd.PersistentFlags().
		String("cwd", "", "Working directory for the command")
	execRunCmd.PersistentFlags().
		Int("max-lines", 0, "Keep only the last N lines of output (0 keeps all)")
}
