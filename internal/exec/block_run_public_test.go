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
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/virt/internal/exec"
)

type BlockRunPublicTestSuite struct {
	suite.Suite

	logger *slog.Logger
}

func (s *BlockRunPublicTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func (s *BlockRunPublicTestSuite) TestBlockRun() {
	tests := []struct {
		name           string
		command        exec.Command
		opts           []exec.Option
		wantOutput     string
		wantExitCode   int
		expectExitErr  bool
		expectSpawnErr bool
	}{
		{
			name:       "when command writes hello and exits 0",
			command:    exec.Args("printf", "hello"),
			wantOutput: "hello",
		},
		{
			name:       "when literal line is split",
			command:    exec.Line("echo hello"),
			wantOutput: "hello\n",
		},
		{
			name:       "when shell mode is used",
			command:    exec.Line("echo a && echo b"),
			opts:       []exec.Option{exec.WithShell()},
			wantOutput: "a\nb\n",
		},
		{
			name:       "when output exceeds the default buffer it is kept whole",
			command:    exec.Line("seq 1 5"),
			wantOutput: "1\n2\n3\n4\n5\n",
		},
		{
			name:       "when capture is disabled it is forced on",
			command:    exec.Line("echo captured"),
			opts:       []exec.Option{exec.WithCaptureOutput(false)},
			wantOutput: "captured\n",
		},
		{
			name:          "when command exits 3 returns exit error with output",
			command:       exec.Line("echo before; echo oops >&2; exit 3"),
			opts:          []exec.Option{exec.WithShell()},
			wantOutput:    "before\noops\n",
			wantExitCode:  3,
			expectExitErr: true,
		},
		{
			name:           "when executable is missing returns execution error",
			command:        exec.Line("nonexistent-command-xyz"),
			expectSpawnErr: true,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			e := exec.New(s.logger, exec.WithDefaultBufferCapacity(2))

			output, err := e.BlockRun(tc.command, tc.opts...)

			switch {
			case tc.expectExitErr:
				var exitErr *exec.CommandExitError
				s.Require().True(errors.As(err, &exitErr))
				s.Equal(tc.wantExitCode, exitErr.ExitCode)
				s.Equal(tc.wantOutput, exitErr.Output)
				s.Equal(tc.command.String(), exitErr.Command)
				s.Contains(err.Error(), "returned non-zero exit status 3")
			case tc.expectSpawnErr:
				var execErr *exec.CommandExecutionError
				s.True(errors.As(err, &execErr))
				s.Empty(output)
			default:
				s.NoError(err)
				s.Equal(tc.wantOutput, output)
			}
		})
	}
}

func TestBlockRunPublicTestSuite(t *testing.T) {
	suite.Run(t, new(BlockRunPublicTestSuite))
}
