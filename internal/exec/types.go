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

// Package exec spawns external commands and captures their output into
// line buffers. Every spawned process is tracked in a bounded registry so
// that still-running children can be reaped on shutdown.
package exec

import (
	"io"
	"log/slog"
)

// MaxProcs is the default number of processes tracked by the registry.
const MaxProcs = 1024

// Manager interface for running external commands.
type Manager interface {
	// Run spawns the command without waiting for it to finish.
	Run(command Command, opts ...Option) (*Invoker, error)
	// BlockRun spawns the command, waits for it to exit, and returns the
	// captured output.
	BlockRun(command Command, opts ...Option) (string, error)
	// RunCmdFull executes the command with stdout and stderr captured
	// separately. The command is killed after timeout seconds.
	RunCmdFull(name string, args []string, cwd string, timeout int) (*CmdResult, error)
}

// Process is the view of a spawned command the registry and reaper work with.
type Process interface {
	// Poll returns the exit code and true once the process has terminated.
	Poll() (int, bool)
	// Kill requests termination without waiting for it.
	Kill() (int, bool, error)
	// PID returns the OS process id, or -1 when not spawned.
	PID() int
	// String returns the command as submitted.
	String() string
}

// Exec runs external commands and owns the process registry.
type Exec struct {
	logger         *slog.Logger
	registry       *Registry
	shell          []string
	maxProcs       int
	bufferCapacity int
	metrics        *metrics
}

// ManagerOption configures an Exec instance.
type ManagerOption func(*Exec)

// CmdResult contains the output of a command executed by RunCmdFull.
type CmdResult struct {
	// Stdout is the standard output.
	Stdout string `json:"stdout"`
	// Stderr is the standard error output.
	Stderr string `json:"stderr"`
	// ExitCode is the process exit code.
	ExitCode int `json:"exit_code"`
	// DurationMs is the execution time in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

// runConfig holds the per-invocation I/O policy.
type runConfig struct {
	captureOutput  bool
	mergeStderr    bool
	stderr         io.Writer
	useShell       bool
	bufferCapacity int
	dir            string
	env            map[string]string
}

// Option configures a single Run or BlockRun invocation.
type Option func(*runConfig)

// State is the lifecycle state of an Invoker.
type State int

const (
	// StateRunning indicates the process has not terminated yet.
	StateRunning State = iota
	// StateExited indicates the process exited on its own.
	StateExited
	// StateKilled indicates the process was terminated by a signal.
	StateKilled
)
