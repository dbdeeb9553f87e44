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

package exec_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/virt/internal/exec"
)

type InvokerPublicTestSuite struct {
	suite.Suite

	logger *slog.Logger
}

func (s *InvokerPublicTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func (s *InvokerPublicTestSuite) wait(
	inv *exec.Invoker,
) {
	select {
	case <-inv.Done():
	case <-time.After(10 * time.Second):
		s.FailNow("command did not finish")
	}
}

func (s *InvokerPublicTestSuite) TestRun() {
	tests := []struct {
		name       string
		command    exec.Command
		opts       []exec.Option
		wantOutput string
		contains   bool
		wantCode   int
		wantState  exec.State
	}{
		{
			name:       "when literal line is split into arguments",
			command:    exec.Line("echo hello world"),
			wantOutput: "hello world\n",
			wantState:  exec.StateExited,
		},
		{
			name:       "when argument vector keeps spaces",
			command:    exec.Args("printf", "%s|", "a b", "c"),
			wantOutput: "a b|c|",
			wantState:  exec.StateExited,
		},
		{
			name:       "when shell mode passes line to the interpreter",
			command:    exec.Line("echo hello | tr a-z A-Z"),
			opts:       []exec.Option{exec.WithShell()},
			wantOutput: "HELLO\n",
			wantState:  exec.StateExited,
		},
		{
			name:       "when stderr is merged by default",
			command:    exec.Line("echo out; echo err >&2"),
			opts:       []exec.Option{exec.WithShell()},
			wantOutput: "out\nerr\n",
			wantState:  exec.StateExited,
		},
		{
			name:       "when buffer is bounded keeps the last lines",
			command:    exec.Line("seq 1 10"),
			opts:       []exec.Option{exec.WithBufferCapacity(3)},
			wantOutput: "8\n9\n10\n",
			wantState:  exec.StateExited,
		},
		{
			name:       "when working directory is set",
			command:    exec.Line("pwd"),
			opts:       []exec.Option{exec.WithDir("/tmp")},
			wantOutput: "tmp",
			contains:   true,
			wantState:  exec.StateExited,
		},
		{
			name:       "when environment is set",
			command:    exec.Line("echo $VIRT_TEST"),
			opts:       []exec.Option{exec.WithShell(), exec.WithEnv(map[string]string{"VIRT_TEST": "yes"})},
			wantOutput: "yes\n",
			wantState:  exec.StateExited,
		},
		{
			name:       "when trailing line has no newline it is kept",
			command:    exec.Args("printf", "no-newline"),
			wantOutput: "no-newline",
			wantState:  exec.StateExited,
		},
		{
			name:       "when command exits non-zero poll reports the code",
			command:    exec.Line("echo partial; exit 3"),
			opts:       []exec.Option{exec.WithShell()},
			wantOutput: "partial\n",
			wantCode:   3,
			wantState:  exec.StateExited,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			e := exec.New(s.logger)

			inv, err := e.Run(tc.command, tc.opts...)
			s.Require().NoError(err)
			s.NotEmpty(inv.ID)
			s.Greater(inv.PID(), 0)
			s.Equal(tc.command.String(), inv.String())

			s.wait(inv)

			code, exited := inv.Poll()
			s.True(exited)
			s.Equal(tc.wantCode, code)
			s.Equal(tc.wantState, inv.State())

			output := inv.GetOutput()
			if tc.contains {
				s.Contains(output, tc.wantOutput)
			} else {
				s.Equal(tc.wantOutput, output)
			}
			s.Empty(inv.GetOutput())
		})
	}
}

func (s *InvokerPublicTestSuite) TestRunSeparateStderr() {
	e := exec.New(s.logger)

	var stderr bytes.Buffer
	inv, err := e.Run(
		exec.Line("echo out; echo err >&2"),
		exec.WithShell(),
		exec.WithStderr(&stderr),
	)
	s.Require().NoError(err)
	s.wait(inv)

	s.Equal("out\n", inv.GetOutput())
	s.Equal("err\n", stderr.String())
}

func (s *InvokerPublicTestSuite) TestRunWithoutCapture() {
	e := exec.New(s.logger)

	inv, err := e.Run(exec.Line("true"), exec.WithCaptureOutput(false))
	s.Require().NoError(err)
	s.wait(inv)

	s.Empty(inv.GetOutput())
	code, exited := inv.Poll()
	s.True(exited)
	s.Equal(0, code)
}

func (s *InvokerPublicTestSuite) TestRunSpawnFailure() {
	tests := []struct {
		name    string
		command exec.Command
		opts    []exec.Option
	}{
		{
			name:    "when executable does not exist",
			command: exec.Line("nonexistent-command-xyz --flag"),
		},
		{
			name:    "when command is empty",
			command: exec.Line(""),
		},
		{
			name:    "when working directory does not exist",
			command: exec.Line("true"),
			opts:    []exec.Option{exec.WithDir("/nonexistent/dir/xyz")},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			e := exec.New(s.logger)

			inv, err := e.Run(tc.command, tc.opts...)

			s.Nil(inv)
			var execErr *exec.CommandExecutionError
			s.Require().True(errors.As(err, &execErr))
			s.Equal(tc.command.String(), execErr.Command)
			s.Contains(err.Error(), "failed to execute command")
			s.Equal(0, e.Registry().Len())
		})
	}
}

func (s *InvokerPublicTestSuite) TestKill() {
	e := exec.New(s.logger)

	inv, err := e.Run(exec.Line("sleep 30"))
	s.Require().NoError(err)

	_, exited := inv.Poll()
	s.False(exited)
	s.Equal(exec.StateRunning, inv.State())

	_, _, err = inv.Kill()
	s.NoError(err)

	s.Eventually(func() bool {
		_, exited := inv.Poll()
		return exited
	}, 5*time.Second, 10*time.Millisecond)

	code, _ := inv.Poll()
	s.Equal(-9, code)
	s.Equal(exec.StateKilled, inv.State())
	s.Equal("killed", inv.State().String())

	// Killing an exited process reports its status without error.
	code, exited, err = inv.Kill()
	s.NoError(err)
	s.True(exited)
	s.Equal(-9, code)
}

func (s *InvokerPublicTestSuite) TestGetOutputWhileRunning() {
	e := exec.New(s.logger)

	inv, err := e.Run(exec.Line("echo first; exec sleep 30"), exec.WithShell())
	s.Require().NoError(err)
	defer func() { _, _, _ = inv.Kill() }()

	var output string
	s.Eventually(func() bool {
		output += inv.GetOutput()
		return strings.Contains(output, "first")
	}, 5*time.Second, 10*time.Millisecond)

	s.Equal("first\n", output)
	s.Empty(inv.GetOutput())
}

func (s *InvokerPublicTestSuite) TestRegistryExhausted() {
	e := exec.New(s.logger, exec.WithMaxProcs(2))

	first, err := e.Run(exec.Line("sleep 30"))
	s.Require().NoError(err)
	second, err := e.Run(exec.Line("sleep 30"))
	s.Require().NoError(err)

	_, err = e.Run(exec.Line("echo never"))
	s.ErrorIs(err, exec.ErrRegistryExhausted)
	s.Equal(2, e.Registry().Len())

	_, _, _ = first.Kill()
	s.Eventually(func() bool {
		_, exited := first.Poll()
		return exited
	}, 5*time.Second, 10*time.Millisecond)

	third, err := e.Run(exec.Line("echo now"))
	s.Require().NoError(err)
	s.Equal(2, e.Registry().Len())

	_, _, _ = second.Kill()
	s.wait(third)
	s.Equal("now\n", third.GetOutput())
}

func (s *InvokerPublicTestSuite) TestStateString() {
	s.Equal("running", exec.StateRunning.String())
	s.Equal("exited", exec.StateExited.String())
	s.Equal("killed", exec.StateKilled.String())
	s.Equal("unknown(9)", exec.State(9).String())
}

func TestInvokerPublicTestSuite(t *testing.T) {
	suite.Run(t, new(InvokerPublicTestSuite))
}
