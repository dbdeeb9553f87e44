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
	"log/slog"
)

// BlockRun spawns command, waits until it has exited and its output has
// been read to the end, and returns the captured output. A non-zero exit
// status is reported as *CommandExitError carrying that output. There is no
// timeout.
//
// Output is unbounded unless the caller passes WithBufferCapacity.
func (e *Exec) BlockRun(
	command Command,
	opts ...Option,
) (string, error) {
	runOpts := make([]Option, 0, len(opts)+2)
	runOpts = append(runOpts, WithBufferCapacity(0))
	runOpts = append(runOpts, opts...)
	runOpts = append(runOpts, WithCaptureOutput(true))

	inv, err := e.Run(command, runOpts...)
	if err != nil {
		return "", err
	}

	<-inv.Done()

	output := inv.GetOutput()
	exitCode, _ := inv.Poll()

	e.logger.Debug(
		"block run",
		slog.String("command", command.String()),
		slog.Int("exit_code", exitCode),
		slog.String("output", output),
	)

	if exitCode != 0 {
		e.metrics.recordExitError()

		return output, &CommandExitError{
			Command:  command.String(),
			ExitCode: exitCode,
			Output:   output,
		}
	}

	return output, nil
}
