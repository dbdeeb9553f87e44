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
	"io"
)

// WithMaxProcs sets the registry capacity. Values below 1 keep MaxProcs.
func WithMaxProcs(
	n int,
) ManagerOption {
	return func(e *Exec) {
		e.maxProcs = n
	}
}

// WithShellCommand sets the interpreter and flag used for shell mode,
// e.g. "/bin/sh", "-c".
func WithShellCommand(
	shell ...string,
) ManagerOption {
	return func(e *Exec) {
		if len(shell) > 0 {
			e.shell = shell
		}
	}
}

// WithDefaultBufferCapacity sets the line capacity used when a Run does not
// pass WithBufferCapacity. Zero means unbounded.
func WithDefaultBufferCapacity(
	n int,
) ManagerOption {
	return func(e *Exec) {
		e.bufferCapacity = n
	}
}

// WithCaptureOutput enables or disables capturing stdout into the
// invoker's buffer. When disabled, stdout is inherited from the host.
func WithCaptureOutput(
	capture bool,
) Option {
	return func(c *runConfig) {
		c.captureOutput = capture
	}
}

// WithMergeStderr controls whether stderr is merged into the captured
// stdout stream. When disabled and no writer is set, stderr is inherited.
func WithMergeStderr(
	merge bool,
) Option {
	return func(c *runConfig) {
		c.mergeStderr = merge
	}
}

// WithStderr sends stderr to w instead of merging it into stdout.
func WithStderr(
	w io.Writer,
) Option {
	return func(c *runConfig) {
		c.mergeStderr = false
		c.stderr = w
	}
}

// WithShell passes the command line unmodified to the shell interpreter.
func WithShell() Option {
	return func(c *runConfig) {
		c.useShell = true
	}
}

// WithBufferCapacity bounds the number of buffered output lines. When the
// bound is hit the oldest line is dropped. Zero means unbounded.
func WithBufferCapacity(
	n int,
) Option {
	return func(c *runConfig) {
		c.bufferCapacity = n
	}
}

// WithDir sets the working directory of the command.
func WithDir(
	dir string,
) Option {
	return func(c *runConfig) {
		c.dir = dir
	}
}

// WithEnv replaces the environment of the command.
func WithEnv(
	env map[string]string,
) Option {
	return func(c *runConfig) {
		c.env = env
	}
}
