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

package cli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/virt/internal/cli"
)

type LifecycleTestSuite struct {
	suite.Suite
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}

type mockServer struct {
	startErr error
	started  bool
	stopped  bool
}

func (m *mockServer) Start() error {
	m.started = true
	return m.startErr
}

func (m *mockServer) Stop(_ context.Context) {
	m.stopped = true
}

func (suite *LifecycleTestSuite) TestRunServer() {
	tests := []struct {
		name         string
		startErr     error
		cleanupCount int
		wantStopped  bool
		wantCleanups int
		wantErr      bool
	}{
		{
			name:         "when context cancelled stops server",
			cleanupCount: 0,
			wantStopped:  true,
			wantCleanups: 0,
		},
		{
			name:         "when cleanup functions provided runs all",
			cleanupCount: 3,
			wantStopped:  true,
			wantCleanups: 3,
		},
		{
			name:         "when start fails returns error without cleanup",
			startErr:     errors.New("spawn failed"),
			cleanupCount: 2,
			wantStopped:  false,
			wantCleanups: 0,
			wantErr:      true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			ctx, cancel := context.WithCancel(context.Background())
			server := &mockServer{startErr: tc.startErr}

			cleanupRan := 0
			cleanupFns := make([]func(), tc.cleanupCount)
			for i := range cleanupFns {
				cleanupFns[i] = func() { cleanupRan++ }
			}

			cancel()
			err := cli.RunServer(ctx, server, cleanupFns...)

			if tc.wantErr {
				assert.Error(suite.T(), err)
			} else {
				assert.NoError(suite.T(), err)
			}
			assert.True(suite.T(), server.started)
			assert.Equal(suite.T(), tc.wantStopped, server.stopped)
			assert.Equal(suite.T(), tc.wantCleanups, cleanupRan)
		})
	}
}
