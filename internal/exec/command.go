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
	"errors"
	"strings"
)

// Command is either a literal command line or an argument vector.
type Command struct {
	line string
	args []string
}

// Line returns a Command for a literal command line.
//
// Unless the command runs in shell mode, the line is split on whitespace.
// Quotes and escapes are not interpreted, so an argument containing spaces
// must be passed with Args instead.
func Line(
	line string,
) Command {
	return Command{line: line}
}

// Args returns a Command for an argument vector.
func Args(
	name string,
	args ...string,
) Command {
	return Command{args: append([]string{name}, args...)}
}

// String returns the command as a single line.
func (c Command) String() string {
	if c.args != nil {
		return strings.Join(c.args, " ")
	}

	return c.line
}

// argv builds the argument vector to spawn. In shell mode the command line
// is handed to shell unmodified.
func (c Command) argv(
	useShell bool,
	shell []string,
) ([]string, error) {
	if useShell {
		line := c.String()
		if strings.TrimSpace(line) == "" {
			return nil, errors.New("empty command")
		}

		return append(append([]string{}, shell...), line), nil
	}

	argv := c.args
	if argv == nil {
		argv = strings.Fields(c.line)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("empty command")
	}

	return argv, nil
}
