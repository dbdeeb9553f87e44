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
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/retr0h/virt/internal/cli"
	"github.com/retr0h/virt/internal/provider/command"
)

const tracerName = "github.com/retr0h/virt/cmd"

// interruptedExitCode is the status used when a signal stops the CLI.
const interruptedExitCode = 130

// execCmd represents the exec command.
var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run local commands",
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func newCommandProvider() *command.Executor {
	return command.New(
		logger.With("component", "command"),
		execManager,
		command.WithShell(appConfig.Exec.Shell, appConfig.Exec.ShellFlag),
	)
}

// runUntilInterrupted runs fn and waits for it to return or for ctx to be
// cancelled. Cancellation exits the CLI, which reaps the commands still
// running.
func runUntilInterrupted[T any](
	ctx context.Context,
	fn func() (T, error),
) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{value: v, err: err}
	}()

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		logger.Warn("interrupted")
		cli.Exit(interruptedExitCode)

		var zero T
		return zero, ctx.Err()
	}
}

// exitStatus maps an exit code to a shell exit status. Signalled exits are
// reported as 128+signal.
func exitStatus(
	code int,
) int {
	if code < 0 {
		return 128 - code
	}

	return code
}

func startSpan(
	ctx context.Context,
	name string,
) (context.Context, func()) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)

	return ctx, func() { span.End() }
}

func printJSON(
	v any,
) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cli.LogFatal(logger, "failed to marshal output", err)
	}

	fmt.Println(string(out))
}
