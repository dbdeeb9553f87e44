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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// waitDelay bounds how long Wait keeps copying stderr into a non-file
// writer after the process exits, in case a descendant holds it open.
const waitDelay = 2 * time.Second

// Invoker is the handle of one spawned command. It owns the OS process,
// the output buffer, and the goroutine draining the output pipe into it.
type Invoker struct {
	// ID is the unique identifier for this invocation.
	ID string

	logger  *slog.Logger
	command Command
	buffer  *OutputBuffer

	mu      sync.Mutex
	process *os.Process
	pipe    *os.File

	// exited is closed once the process has been reaped; exitCode and
	// signaled are written before that.
	exited   chan struct{}
	drained  chan struct{}
	done     chan struct{}
	exitCode int
	signaled bool

	pipeOnce sync.Once
}

var _ Process = (*Invoker)(nil)

func newInvoker(
	logger *slog.Logger,
	command Command,
	bufferCapacity int,
) *Invoker {
	return &Invoker{
		ID:       uuid.New().String(),
		logger:   logger,
		command:  command,
		buffer:   NewOutputBuffer(bufferCapacity),
		exited:   make(chan struct{}),
		drained:  make(chan struct{}),
		done:     make(chan struct{}),
		exitCode: -1,
	}
}

// start spawns argv according to cfg and launches the reader and waiter
// goroutines.
func (i *Invoker) start(
	argv []string,
	cfg runConfig,
) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = cfg.dir
	cmd.WaitDelay = waitDelay
	if cfg.env != nil {
		cmd.Env = envList(cfg.env)
	}

	var r, w *os.File
	if cfg.captureOutput {
		var err error
		r, w, err = os.Pipe()
		if err != nil {
			return fmt.Errorf("create output pipe: %w", err)
		}
		cmd.Stdout = w
	} else {
		cmd.Stdout = os.Stdout
	}

	switch {
	case cfg.mergeStderr:
		cmd.Stderr = cmd.Stdout
	case cfg.stderr != nil:
		cmd.Stderr = cfg.stderr
	default:
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		if r != nil {
			_ = r.Close()
			_ = w.Close()
		}

		return err
	}

	i.mu.Lock()
	i.process = cmd.Process
	i.pipe = r
	i.mu.Unlock()

	if r != nil {
		// The child holds its own copy of the write end.
		_ = w.Close()
		go i.read(r)
	} else {
		close(i.drained)
	}

	go i.wait(cmd)

	return nil
}

// fail marks an invoker whose spawn failed as terminated.
func (i *Invoker) fail() {
	close(i.exited)
	close(i.drained)
	close(i.done)
}

// read drains the output pipe line by line until end-of-stream.
func (i *Invoker) read(
	r *os.File,
) {
	defer close(i.drained)
	defer i.closePipe()

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			i.buffer.Enqueue(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				i.logger.Debug(
					"output reader stopped",
					slog.String("id", i.ID),
					slog.Any("error", err),
				)
			}

			return
		}
	}
}

// wait reaps the process and records its exit status.
func (i *Invoker) wait(
	cmd *exec.Cmd,
) {
	err := cmd.Wait()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		i.logger.Debug(
			"wait failed",
			slog.String("id", i.ID),
			slog.Any("error", err),
		)
	}

	if ps := cmd.ProcessState; ps != nil {
		i.exitCode = ps.ExitCode()
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			i.signaled = true
			i.exitCode = -int(ws.Signal())
		}
	}
	close(i.exited)

	<-i.drained
	close(i.done)
}

// closePipe closes the read end of the output pipe, unblocking the reader
// even when a descendant still holds the write end.
func (i *Invoker) closePipe() {
	i.pipeOnce.Do(func() {
		i.mu.Lock()
		pipe := i.pipe
		i.mu.Unlock()

		if pipe != nil {
			_ = pipe.Close()
		}
	})
}

// Poll returns the exit code and true if the process has terminated, or
// false while it is still running. It never blocks.
func (i *Invoker) Poll() (int, bool) {
	select {
	case <-i.exited:
		return i.exitCode, true
	default:
		return 0, false
	}
}

// Kill sends SIGKILL to the process and returns its status without
// waiting. A false result means the caller must poll again.
func (i *Invoker) Kill() (int, bool, error) {
	i.mu.Lock()
	process := i.process
	i.mu.Unlock()

	if process == nil {
		code, exited := i.Poll()
		return code, exited, nil
	}

	if err := process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		code, exited := i.Poll()
		return code, exited, fmt.Errorf("kill pid %d: %w", process.Pid, err)
	}

	code, exited := i.Poll()

	return code, exited, nil
}

// State returns the lifecycle state derived from polling the process.
func (i *Invoker) State() State {
	if _, exited := i.Poll(); !exited {
		return StateRunning
	}
	if i.signaled {
		return StateKilled
	}

	return StateExited
}

// GetOutput removes and returns all buffered output. Lines keep their
// trailing newline. A second call returns only output read in between.
func (i *Invoker) GetOutput() string {
	return strings.Join(i.buffer.DrainAll(), "")
}

// Done returns a channel that is closed once the process has exited and
// its output stream has been fully read.
func (i *Invoker) Done() <-chan struct{} {
	return i.done
}

// PID returns the OS process id, or -1 if the process was not spawned.
func (i *Invoker) PID() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.process == nil {
		return -1
	}

	return i.process.Pid
}

// String returns the command as submitted.
func (i *Invoker) String() string {
	return i.command.String()
}

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func envList(
	env map[string]string,
) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}

	return out
}
