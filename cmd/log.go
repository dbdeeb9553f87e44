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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retr0h/virt/internal/cli"
)

// logCmd represents the log command.
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Read the start or end of large log files",
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.PersistentFlags().
		IntP("lines", "n", 10, "Number of lines to print")
}

func printLines(
	file string,
	lines []string,
	err error,
) {
	if err != nil {
		cli.LogFatal(logger, "failed to read file", err, "file", file)
	}

	if jsonOutput {
		printJSON(lines)
		return
	}

	for _, l := range lines {
		fmt.Println(l)
	}
}
