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

package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"

	"github.com/retr0h/virt/internal/config"
)

type InitMeterTestSuite struct {
	suite.Suite
}

func (s *InitMeterTestSuite) TestInitMeterTextfile() {
	tests := []struct {
		name      string
		textfile  func(dir string) string
		wantFile  bool
		wantInOut []string
	}{
		{
			name: "when textfile is empty writes nothing",
			textfile: func(_ string) string {
				return ""
			},
			wantFile: false,
		},
		{
			name: "when textfile is configured writes recorded metrics",
			textfile: func(dir string) string {
				return filepath.Join(dir, "virt.prom")
			},
			wantFile:  true,
			wantInOut: []string{"virt_test_total"},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			dir := s.T().TempDir()
			cfg := config.MetricsConfig{
				Textfile: tc.textfile(dir),
			}

			flush, err := InitMeter(cfg)
			s.Require().NoError(err)
			s.Require().NotNil(flush)

			counter, err := otel.Meter("test").Int64Counter("virt.test")
			s.Require().NoError(err)
			counter.Add(context.Background(), 2)

			s.NoError(flush(context.Background()))

			if !tc.wantFile {
				entries, err := os.ReadDir(dir)
				s.NoError(err)
				s.Empty(entries)

				return
			}

			data, err := os.ReadFile(cfg.Textfile)
			s.Require().NoError(err)
			for _, want := range tc.wantInOut {
				s.Contains(string(data), want)
			}
		})
	}
}

func (s *InitMeterTestSuite) TestInitMeterTextfileError() {
	original := writeTextfileFn
	defer func() { writeTextfileFn = original }()

	writeTextfileFn = func(_ string, _ promclient.Gatherer) error {
		return errors.New("disk full")
	}

	flush, err := InitMeter(config.MetricsConfig{Textfile: "/tmp/virt.prom"})
	s.Require().NoError(err)

	err = flush(context.Background())
	s.Error(err)
	s.Contains(err.Error(), "writing metrics textfile")
}

func (s *InitMeterTestSuite) TestInitMeterExporterError() {
	tests := []struct {
		name string
	}{
		{
			name: "when prometheus exporter creation fails returns error",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			original := prometheusNewFn
			defer func() { prometheusNewFn = original }()

			prometheusNewFn = func(
				_ ...prometheus.Option,
			) (*prometheus.Exporter, error) {
				return nil, errors.New("prometheus exporter failed")
			}

			flush, err := InitMeter(config.MetricsConfig{})

			s.Error(err)
			s.Nil(flush)
			s.Contains(err.Error(), "creating prometheus exporter")
		})
	}
}

func TestInitMeterTestSuite(t *testing.T) {
	suite.Run(t, new(InitMeterTestSuite))
}
