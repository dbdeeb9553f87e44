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

package exec

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"
)

// RunCmdFull executes the provided command with stdout and stderr captured
// separately. A timeout of 0 defaults to 30 seconds. The command is tracked in the
// registry like any other Run; on timeout it is killed.
func (e *Exec) RunCmdFull(
	name string,
	args []string,
	cwd string,
	timeout int,
) (*CmdResult, error) {
	if timeout <= 0 {
		timeout = 30
	}

	var stderr bytes.Buffer
	command := Args(name, args...)

	start := time.Now()
	inv, err := e.Run(
		command,
		WithDir(cwd),
		WithStderr(&stderr),
		WithBufferCapacity(0),
	)
	if err != nil {
		e.logger.Debug(
			"exec full",
			slog.String("command", command.String()),
			slog.String("cwd", cwd),
			slog.Any("error", err),
		)

		return &CmdResult{ExitCode: -1}, err
	}

	timer := time.NewTimer(time.Duration(timeout) * time.Second)
	defer timer.Stop()

	timedOut := false
	select {
	case <-inv.Done():
	case <-timer.C:
		timedOut = true
		if _, _, err := inv.Kill(); err != nil {
			e.logger.Debug(
				"kill after timeout failed",
				slog.String("command", command.String()),
				slog.Any("error", err),
			)
		}
		<-inv.exited
		inv.closePipe()
		<-inv.drained
	}
	duration := time.Since(start)

	exitCode, _ := inv.Poll()
	result := &CmdResult{
		Stdout:     inv.GetOutput(),
		Stderr:     stderr.String(),
		ExitCode:   exitCode,
		DurationMs: duration.Milliseconds(),
	}

	e.logger.Debug(
		"exec full",
		slog.String("command", command.String()),
		slog.String("cwd", cwd),
		slog.Int("exit_code", result.ExitCode),
		slog.Int64("duration_ms", result.DurationMs),
		slog.Bool("timed_out", timedOut),
	)

	if timedOut {
		result.ExitCode = -1
		return result, fmt.Errorf("command timed out after %ds", timeout)
	}

	return result, nil
}
