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
)

// Registry tracks spawned processes in insertion order. It is bounded;
// slots held by terminated processes are reclaimed only when the bound is
// hit.
type Registry struct {
	mu       sync.Mutex
	logger   *slog.Logger
	capacity int
	entries  []Process
}

// NewRegistry creates an empty registry holding at most capacity entries.
// A capacity below 1 falls back to MaxProcs.
func NewRegistry(
	logger *slog.Logger,
	capacity int,
) *Registry {
	if capacity < 1 {
		capacity = MaxProcs
	}

	return &Registry{
		logger:   logger,
		capacity: capacity,
		entries:  make([]Process, 0, capacity),
	}
}

// Admit appends p to the registry. When the registry is full, terminated
// entries are discarded first while the survivors keep their relative
// order. If every entry is still running, ErrRegistryExhausted is returned
// and p is not tracked.
func (r *Registry) Admit(
	p Process,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) < r.capacity {
		r.entries = append(r.entries, p)
		return nil
	}

	r.logger.Debug(
		"process registry reached maximum size, removing terminated processes",
		slog.Int("capacity", r.capacity),
	)

	survivors := make([]Process, 0, r.capacity)
	for _, entry := range r.entries {
		if code, exited := entry.Poll(); exited {
			r.logger.Debug(
				"removing terminated process",
				slog.Int("pid", entry.PID()),
				slog.String("command", entry.String()),
				slog.Int("exit_code", code),
			)

			continue
		}

		survivors = append(survivors, entry)
	}
	r.entries = survivors

	if len(r.entries) >= r.capacity {
		return ErrRegistryExhausted
	}

	r.entries = append(r.entries, p)

	return nil
}

// Release removes p from the registry. It is used only to give back the
// slot of a process whose spawn failed.
func (r *Registry) Release(
	p Process,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry == p {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Snapshot returns a copy of the tracked processes, oldest first.
func (r *Registry) Snapshot() []Process {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Process, len(r.entries))
	copy(out, r.entries)

	return out
}

// Len returns the number of tracked processes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Capacity returns the registry bound.
func (r *Registry) Capacity() int {
	return r.capacity
}
