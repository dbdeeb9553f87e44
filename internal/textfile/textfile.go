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

// Package textfile reads the first or last lines of large text files
// without loading the whole file.
package textfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/avfs/avfs"
)

// BlockSize is the number of bytes read per step.
const BlockSize = 1024

// ErrNotFile is returned when the path is missing or is not a regular file.
var ErrNotFile = errors.New("does not exist or not a file")

// Head returns up to n lines from the start of name. Lines are returned
// without their trailing newline. A file with fewer lines returns all of
// them.
func Head(
	vfs avfs.VFS,
	name string,
	n int,
) ([]string, error) {
	f, size, err := open(vfs, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if n <= 0 || size == 0 {
		return []string{}, nil
	}

	var data []byte
	block := make([]byte, BlockSize)
	for {
		read, err := f.Read(block)
		data = append(data, block[:read]...)

		if bytes.Count(data, []byte("\n")) >= n {
			break
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}

	lines := splitLines(data)
	if len(lines) > n {
		lines = lines[:n]
	}

	return lines, nil
}

// Tail returns up to n lines from the end of name, reading backwards one
// block at a time. Lines are returned without their trailing newline.
func Tail(
	vfs avfs.VFS,
	name string,
	n int,
) ([]string, error) {
	f, size, err := open(vfs, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if n <= 0 || size == 0 {
		return []string{}, nil
	}

	var data []byte
	offset := size
	for offset > 0 {
		step := int64(BlockSize)
		if offset < step {
			step = offset
		}
		offset -= step

		block := make([]byte, step)
		if _, err := f.ReadAt(block, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		data = append(block, data...)

		// One extra newline is needed: the last byte may end the final line.
		if bytes.Count(data, []byte("\n")) > n {
			break
		}
	}

	lines := splitLines(data)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return lines, nil
}

func open(
	vfs avfs.VFS,
	name string,
) (avfs.File, int64, error) {
	info, err := vfs.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return nil, 0, fmt.Errorf("file %s %w", name, ErrNotFile)
	}

	f, err := vfs.Open(name)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", name, err)
	}

	return f, info.Size(), nil
}

// splitLines splits data on newlines, dropping a trailing empty line and
// any carriage returns.
func splitLines(
	data []byte,
) []string {
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return []string{}
	}

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}
