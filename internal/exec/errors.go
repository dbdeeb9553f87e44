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
	"errors"
	"fmt"
)

// ErrRegistryExhausted is returned when every tracked process is still
// running and the registry has no free slot. The command is not spawned.
var ErrRegistryExhausted = errors.New("process registry exhausted")

// CommandExecutionError reports that a command could not be spawned.
type CommandExecutionError struct {
	Command string
	Err     error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("failed to execute command %s: %v", e.Command, e.Err)
}

func (e *CommandExecutionError) Unwrap() error {
	return e.Err
}

// CommandExitError reports a non-zero exit status from BlockRun.
type CommandExitError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandExitError) Error() string {
	return fmt.Sprintf(
		"command %s returned non-zero exit status %d. Output: %s",
		e.Command,
		e.ExitCode,
		e.Output,
	)
}
