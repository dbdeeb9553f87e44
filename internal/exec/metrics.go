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
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/retr0h/virt/internal/exec"

// metrics holds the instruments recorded by Exec and Reaper.
type metrics struct {
	spawned       metric.Int64Counter
	spawnFailures metric.Int64Counter
	exitErrors    metric.Int64Counter
	exhausted     metric.Int64Counter
	reaped        metric.Int64Counter
}

func newMetrics(
	logger *slog.Logger,
	registry *Registry,
) *metrics {
	meter := otel.Meter(meterName)

	m := &metrics{
		spawned: int64Counter(logger, meter,
			"virt.exec.spawned", "Commands spawned."),
		spawnFailures: int64Counter(logger, meter,
			"virt.exec.spawn_failures", "Commands that could not be spawned."),
		exitErrors: int64Counter(logger, meter,
			"virt.exec.exit_errors", "Blocking runs that exited non-zero."),
		exhausted: int64Counter(logger, meter,
			"virt.exec.registry.exhausted", "Admissions refused by a full registry."),
		reaped: int64Counter(logger, meter,
			"virt.exec.reaped", "Processes killed during shutdown."),
	}

	if registry != nil {
		_, err := meter.Int64ObservableGauge(
			"virt.exec.registry.size",
			metric.WithDescription("Processes tracked by the registry."),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(registry.Len()))
				return nil
			}),
		)
		if err != nil {
			logger.Debug("failed to create registry gauge", slog.Any("error", err))
		}
	}

	return m
}

func int64Counter(
	logger *slog.Logger,
	meter metric.Meter,
	name string,
	description string,
) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Debug(
			"failed to create counter",
			slog.String("name", name),
			slog.Any("error", err),
		)

		return noop.Int64Counter{}
	}

	return c
}

func (m *metrics) recordSpawn(
	shell bool,
) {
	m.spawned.Add(
		context.Background(),
		1,
		metric.WithAttributes(attribute.Bool("shell", shell)),
	)
}

func (m *metrics) recordSpawnFailure() {
	m.spawnFailures.Add(context.Background(), 1)
}

func (m *metrics) recordExitError() {
	m.exitErrors.Add(context.Background(), 1)
}

func (m *metrics) recordExhausted() {
	m.exhausted.Add(context.Background(), 1)
}

func (m *metrics) recordReaped(
	n int,
) {
	if n > 0 {
		m.reaped.Add(context.Background(), int64(n))
	}
}
