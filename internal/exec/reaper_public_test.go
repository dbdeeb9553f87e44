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
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/virt/internal/exec"
	"github.com/retr0h/virt/internal/exec/mocks"
)

type ReaperPublicTestSuite struct {
	suite.Suite

	mockCtrl *gomock.Controller
	logger   *slog.Logger
}

func (s *ReaperPublicTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func (s *ReaperPublicTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ReaperPublicTestSuite) TestReap() {
	tests := []struct {
		name       string
		total      int
		running    []int
		killErr    error
		wantKilled int
	}{
		{
			name:       "when registry is empty kills nothing",
			total:      0,
			wantKilled: 0,
		},
		{
			name:       "when some processes are running kills exactly those",
			total:      6,
			running:    []int{1, 4, 5},
			wantKilled: 3,
		},
		{
			name:       "when every process exited kills nothing",
			total:      4,
			wantKilled: 0,
		},
		{
			name:       "when kill fails logs and continues",
			total:      3,
			running:    []int{0, 2},
			killErr:    errors.New("operation not permitted"),
			wantKilled: 0,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			r := exec.NewRegistry(s.logger, 8)
			procs := newFakeProcesses(tc.total)
			for _, p := range procs {
				p.exited = true
				p.killErr = tc.killErr
				s.Require().NoError(r.Admit(p))
			}
			for _, i := range tc.running {
				procs[i].exited = false
			}

			reaper := exec.NewReaper(s.logger, r)

			s.Equal(tc.wantKilled, reaper.Reap())

			running := make(map[int]bool, len(tc.running))
			for _, i := range tc.running {
				running[i] = true
			}
			for i, p := range procs {
				if running[i] {
					s.Equal(1, p.kills, p.name)
				} else {
					s.Equal(0, p.kills, p.name)
				}
			}
		})
	}
}

func (s *ReaperPublicTestSuite) TestReapRunsOnce() {
	r := exec.NewRegistry(s.logger, 2)

	mockProc := mocks.NewMockProcess(s.mockCtrl)
	mockProc.EXPECT().Poll().Return(0, false).Times(1)
	mockProc.EXPECT().PID().Return(-1).AnyTimes()
	mockProc.EXPECT().String().Return("sleep 30").AnyTimes()
	mockProc.EXPECT().Kill().Return(-9, true, nil).Times(1)
	s.Require().NoError(r.Admit(mockProc))

	reaper := exec.NewReaper(s.logger, r)

	s.Equal(1, reaper.Reap())
	s.Equal(0, reaper.Reap())
}

func (s *ReaperPublicTestSuite) TestReapPollsWhenKillIsIndeterminate() {
	r := exec.NewRegistry(s.logger, 2)

	mockProc := mocks.NewMockProcess(s.mockCtrl)
	gomock.InOrder(
		mockProc.EXPECT().Poll().Return(0, false),
		mockProc.EXPECT().Kill().Return(0, false, nil),
		mockProc.EXPECT().Poll().Return(-9, true),
	)
	mockProc.EXPECT().PID().Return(-1).AnyTimes()
	mockProc.EXPECT().String().Return("sleep 30").AnyTimes()
	s.Require().NoError(r.Admit(mockProc))

	s.Equal(1, exec.NewReaper(s.logger, r).Reap())
}

func (s *ReaperPublicTestSuite) TestReapRealProcesses() {
	e := exec.New(s.logger)

	done, err := e.Run(exec.Line("true"))
	s.Require().NoError(err)
	<-done.Done()

	running, err := e.Run(exec.Line("sleep 30"))
	s.Require().NoError(err)

	s.Equal(1, e.Reaper().Reap())

	s.Eventually(func() bool {
		_, exited := running.Poll()
		return exited
	}, 5*time.Second, 10*time.Millisecond)
	s.Equal(exec.StateKilled, running.State())
	s.Equal(exec.StateExited, done.State())

	select {
	case <-running.Done():
	case <-time.After(5 * time.Second):
		s.Fail("reader was not released")
	}
}

func TestReaperPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ReaperPublicTestSuite))
}
