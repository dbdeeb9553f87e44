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
	"sync"

	psprocess "github.com/shirou/gopsutil/v4/process"
)

// childrenFn lists the direct children of pid. It is a package-level
// variable so tests can replace it.
var childrenFn = func(
	pid int,
) ([]int32, error) {
	p, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}

	children, err := p.Children()
	if err != nil {
		return nil, err
	}

	pids := make([]int32, 0, len(children))
	for _, c := range children {
		pids = append(pids, c.Pid)
	}

	return pids, nil
}

// Reaper kills the processes still running in a registry when the host
// process shuts down. It is best-effort: only the tracked process is
// killed, so children of a shell-mode command may keep running.
type Reaper struct {
	logger   *slog.Logger
	registry *Registry
	metrics  *metrics
	once     sync.Once
}

// NewReaper creates a Reaper for registry.
func NewReaper(
	logger *slog.Logger,
	registry *Registry,
) *Reaper {
	return &Reaper{
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(logger, nil),
	}
}

// Reaper returns a Reaper bound to the registry of e.
func (e *Exec) Reaper() *Reaper {
	return NewReaper(e.logger, e.registry)
}

// Reap kills every tracked process that is still running and returns how
// many were killed. Processes that already exited are left untouched. Kill
// failures are logged, never returned. Only the first call does any work.
func (r *Reaper) Reap() int {
	killed := 0
	r.once.Do(func() {
		killed = r.reap()
	})

	return killed
}

func (r *Reaper) reap() int {
	killed := 0
	for _, p := range r.registry.Snapshot() {
		if _, exited := p.Poll(); exited {
			continue
		}

		pid := p.PID()
		var descendants []int32
		if pid > 0 {
			descendants, _ = childrenFn(pid)
		}

		code, exited, err := p.Kill()
		if err != nil {
			r.logger.Warn(
				"failed to kill process",
				slog.Int("pid", pid),
				slog.String("command", p.String()),
				slog.Any("error", err),
			)

			continue
		}
		if !exited {
			code, exited = p.Poll()
		}
		killed++

		if inv, ok := p.(*Invoker); ok {
			inv.closePipe()
		}

		r.logger.Debug(
			"killed process",
			slog.Int("pid", pid),
			slog.String("command", p.String()),
			slog.Int("exit_code", code),
			slog.Bool("exited", exited),
		)

		if len(descendants) > 0 {
			r.logger.Warn(
				"child processes may outlive the killed process",
				slog.Int("pid", pid),
				slog.Any("children", descendants),
			)
		}
	}

	r.metrics.recordReaped(killed)

	return killed
}
