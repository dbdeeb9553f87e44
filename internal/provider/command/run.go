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

package command

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retr0h/virt/internal/exec"
)

// Run executes a command and waits for it to finish. A non-zero exit status
// is reported in the Result, not as an error.
func (c *Executor) Run(
	params RunParams,
) (*Result, error) {
	c.logger.Debug("running command",
		slog.String("command", params.Command),
		slog.Bool("shell", params.Shell),
		slog.String("cwd", params.Cwd),
	)

	opts := []exec.Option{}
	if params.Shell {
		opts = append(opts, exec.WithShell())
	}
	if params.Cwd != "" {
		opts = append(opts, exec.WithDir(params.Cwd))
	}
	if params.Env != nil {
		opts = append(opts, exec.WithEnv(params.Env))
	}
	if params.MaxLines > 0 {
		opts = append(opts, exec.WithBufferCapacity(params.MaxLines))
	}

	start := time.Now()
	output, err := c.execManager.BlockRun(exec.Line(params.Command), opts...)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		var exitErr *exec.CommandExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("command run failed: %w", err)
		}

		return &Result{
			Stdout:     exitErr.Output,
			ExitCode:   exitErr.ExitCode,
			DurationMs: duration,
			Changed:    true,
		}, nil
	}

	return &Result{
		Stdout:     output,
		DurationMs: duration,
		Changed:    true,
	}, nil
}
