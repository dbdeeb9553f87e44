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
	"log/slog"

	"github.com/retr0h/virt/internal/exec"
)

// New factory to create a new Executor instance.
func New(
	logger *slog.Logger,
	execManager exec.Manager,
	opts ...Option,
) *Executor {
	e := &Executor{
		logger:      logger,
		execManager: execManager,
		shell:       []string{"/bin/sh", "-c"},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithShell sets the shell and its command flag used by Shell.
func WithShell(
	shell string,
	flag string,
) Option {
	return func(e *Executor) {
		e.shell = []string{shell, flag}
	}
}
