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
	"sync"
)

// OutputBuffer is a thread-safe sequence of output lines. A bounded buffer
// drops its oldest line to make room for a new one, so Enqueue never blocks.
type OutputBuffer struct {
	mu       sync.Mutex
	capacity int
	lines    []string
	head     int
	size     int
}

// NewOutputBuffer creates a buffer holding at most capacity lines.
// A capacity of zero or less means unbounded.
func NewOutputBuffer(
	capacity int,
) *OutputBuffer {
	b := &OutputBuffer{}
	if capacity > 0 {
		b.capacity = capacity
		b.lines = make([]string, capacity)
	}

	return b
}

// Enqueue appends line, evicting the oldest line when the buffer is full.
func (b *OutputBuffer) Enqueue(
	line string,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capacity == 0 {
		b.lines = append(b.lines, line)
		b.size++
		return
	}

	tail := (b.head + b.size) % b.capacity
	b.lines[tail] = line
	if b.size == b.capacity {
		b.head = (b.head + 1) % b.capacity
		return
	}
	b.size++
}

// DrainAll removes and returns every buffered line, oldest first.
func (b *OutputBuffer) DrainAll() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, b.size)
	if b.capacity == 0 {
		out = append(out, b.lines...)
		b.lines = nil
		b.size = 0
		return out
	}

	for i := 0; i < b.size; i++ {
		idx := (b.head + i) % b.capacity
		out = append(out, b.lines[idx])
		b.lines[idx] = ""
	}
	b.head = 0
	b.size = 0

	return out
}

// Len returns the number of buffered lines.
func (b *OutputBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.size
}

// Capacity returns the line bound, or 0 when unbounded.
func (b *OutputBuffer) Capacity() int {
	return b.capacity
}
