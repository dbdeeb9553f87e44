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
	"runtime"
)

// New factory to create a new Exec instance. Every command spawned through
// the returned Exec is tracked in one registry of MaxProcs entries unless
// WithMaxProcs says otherwise.
func New(
	logger *slog.Logger,
	opts ...ManagerOption,
) *Exec {
	e := &Exec{
		logger:   logger,
		shell:    defaultShell(),
		maxProcs: MaxProcs,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.registry = NewRegistry(logger, e.maxProcs)
	e.metrics = newMetrics(logger, e.registry)

	return e
}

// Registry returns the registry tracking processes spawned by e.
func (e *Exec) Registry() *Registry {
	return e.registry
}

// Run spawns command without waiting for it. The invocation is admitted to
// the registry before the process is spawned; when admission fails
// ErrRegistryExhausted is returned and nothing is spawned. By default
// stdout is captured and stderr is merged into it.
func (e *Exec) Run(
	command Command,
	opts ...Option,
) (*Invoker, error) {
	cfg := runConfig{
		captureOutput:  true,
		mergeStderr:    true,
		bufferCapacity: e.bufferCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	inv := newInvoker(e.logger, command, cfg.bufferCapacity)
	if err := e.registry.Admit(inv); err != nil {
		e.metrics.recordExhausted()
		return nil, err
	}

	e.logger.Debug(
		"run command",
		slog.String("id", inv.ID),
		slog.String("command", command.String()),
		slog.Bool("shell", cfg.useShell),
		slog.String("cwd", cfg.dir),
	)

	argv, err := command.argv(cfg.useShell, e.shell)
	if err == nil {
		err = inv.start(argv, cfg)
	}
	if err != nil {
		inv.fail()
		e.registry.Release(inv)
		e.metrics.recordSpawnFailure()

		return nil, &CommandExecutionError{
			Command: command.String(),
			Err:     err,
		}
	}

	e.metrics.recordSpawn(cfg.useShell)

	return inv, nil
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}

	return []string{"/bin/sh", "-c"}
}
