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

package cli

import (
	"log/slog"
	"os"
	"sync"
)

// osExit terminates the process. Override in tests.
var osExit = os.Exit

var (
	exitMu    sync.Mutex
	exitHooks []func()
	exitOnce  sync.Once
)

// OnExit registers fn to run once when the process exits through Exit or
// LogFatal. Hooks run in reverse registration order.
func OnExit(
	fn func(),
) {
	exitMu.Lock()
	defer exitMu.Unlock()

	exitHooks = append(exitHooks, fn)
}

// RunExitHooks runs the registered exit hooks. Only the first call does
// any work.
func RunExitHooks() {
	exitOnce.Do(func() {
		exitMu.Lock()
		hooks := make([]func(), len(exitHooks))
		copy(hooks, exitHooks)
		exitMu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i]()
		}
	})
}

// Exit runs the exit hooks and terminates the process with code.
func Exit(
	code int,
) {
	RunExitHooks()
	osExit(code)
}

// LogFatal logs msg at error level with err and the optional key-value
// pairs, then exits with status 1.
func LogFatal(
	logger *slog.Logger,
	msg string,
	err error,
	kvPairs ...any,
) {
	if err != nil {
		kvPairs = append(kvPairs, "error", err)
	}
	logger.Error(msg, kvPairs...)

	Exit(1)
}
