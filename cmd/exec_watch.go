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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/retr0h/virt/internal/cli"
	"github.com/retr0h/virt/internal/exec"
)

// outputWatcher spawns a command without blocking and streams its output
// until it exits.
type outputWatcher struct {
	logger   *slog.Logger
	manager  exec.Manager
	command  exec.Command
	opts     []exec.Option
	interval time.Duration
	out      io.Writer
	// onExit is called once the command has exited on its own.
	onExit func()

	invoker  *exec.Invoker
	stop     chan struct{}
	stopOnce sync.Once
	finished chan struct{}
}

func newOutputWatcher(
	logger *slog.Logger,
	manager exec.Manager,
	command exec.Command,
	interval time.Duration,
	out io.Writer,
	onExit func(),
	opts ...exec.Option,
) *outputWatcher {
	return &outputWatcher{
		logger:   logger,
		manager:  manager,
		command:  command,
		opts:     opts,
		interval: interval,
		out:      out,
		onExit:   onExit,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start spawns the command and starts streaming its output.
func (w *outputWatcher) Start() error {
	inv, err := w.manager.Run(w.command, w.opts...)
	if err != nil {
		return err
	}
	w.invoker = inv

	w.logger.Debug("watching command",
		slog.String("id", inv.ID),
		slog.Int("pid", inv.PID()),
		slog.String("command", w.command.String()),
	)

	go w.loop()

	return nil
}

func (w *outputWatcher) loop() {
	defer close(w.finished)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			_, _ = io.WriteString(w.out, w.invoker.GetOutput())

			if _, exited := w.invoker.Poll(); exited {
				<-w.invoker.Done()
				_, _ = io.WriteString(w.out, w.invoker.GetOutput())
				if w.onExit != nil {
					w.onExit()
				}

				return
			}
		}
	}
}

// Stop kills the command if it is still running and waits for streaming
// to finish or ctx to expire.
func (w *outputWatcher) Stop(
	ctx context.Context,
) {
	if w.invoker == nil {
		return
	}

	if _, exited := w.invoker.Poll(); !exited {
		if _, _, err := w.invoker.Kill(); err != nil {
			w.logger.Warn("failed to kill command", slog.Any("error", err))
		}
	}

	select {
	case <-w.finished:
	case <-ctx.Done():
		w.stopOnce.Do(func() { close(w.stop) })
	}
}

// ExitCode returns the exit code once the command has exited.
func (w *outputWatcher) ExitCode() (int, bool) {
	if w.invoker == nil {
		return 0, false
	}

	return w.invoker.Poll()
}

// execWatchCmd represents the exec watch command.
var execWatchCmd = &cobra.Command{
	Use:   "watch [flags] -- COMMAND [ARGS...]",
	Short: "Run a command and stream its output",
	Long: `Run a command in the background and print its output as it arrives.
Ctrl-C kills the command.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, end := startSpan(cmd.Context(), "exec watch")
		defer end()

		useShell, _ := cmd.Flags().GetBool("shell")
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval, _ = time.ParseDuration(appConfig.Exec.PollInterval)
		}

		opts := []exec.Option{}
		if useShell {
			opts = append(opts, exec.WithShell())
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		w := newOutputWatcher(
			logger.With("component", "watch"),
			execManager,
			exec.Line(strings.Join(args, " ")),
			interval,
			os.Stdout,
			cancel,
			opts...,
		)

		if err := cli.RunServer(ctx, w); err != nil {
			cli.LogFatal(logger, "failed to start command", err)
		}

		code, _ := w.ExitCode()
		if !jsonOutput {
			fmt.Println()
			cli.PrintKV("Exit Code", cli.FormatExitCode(code))
		}
		if code != 0 {
			cli.Exit(exitStatus(code))
		}
	},
}

func init() {
	execCmd.AddCommand(execWatchCmd)

	execWatchCmd.PersistentFlags().
		Bool("shell", false, "Run the command line through the configured shell")
	execWatchCmd.PersistentFlags().
		Duration("interval", 0, "How often to poll for output (defaults to exec.poll_interval)")
}
