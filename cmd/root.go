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
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/avfs/avfs"
	"github.com/avfs/avfs/vfs/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/retr0h/virt/internal/cli"
	"github.com/retr0h/virt/internal/config"
	"github.com/retr0h/virt/internal/exec"
	"github.com/retr0h/virt/internal/telemetry"
)

var (
	appConfig   config.Config
	appFs       avfs.VFS = osfs.New()
	logger               = slog.New(slog.NewTextHandler(os.Stderr, nil))
	jsonOutput  bool
	execManager *exec.Exec
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "virt",
	Short: "Run and supervise local commands.",
	Long: `Run local commands in the foreground or background, capture their
output, and make sure nothing is left running on exit.

https://github.com/retr0h/virt
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		cli.Exit(1)
	}

	cli.Exit(0)
}

func init() {
	cobra.OnInitialize(initConfig, initLogger, initExec)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable or disable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON output")

	rootCmd.PersistentFlags().
		StringP("virt-file", "f", "/etc/virt/virt.yaml", "Path to config file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("virtFile", rootCmd.PersistentFlags().Lookup("virt-file"))
}

func setDefaults() {
	viper.SetDefault("exec.max_procs", exec.MaxProcs)
	viper.SetDefault("exec.buffer_capacity", 0)
	viper.SetDefault("exec.shell", "/bin/sh")
	viper.SetDefault("exec.shell_flag", "-c")
	viper.SetDefault("exec.poll_interval", "100ms")
	viper.SetDefault("telemetry.tracing.enabled", false)
	viper.SetDefault("telemetry.tracing.exporter", "")
	viper.SetDefault("telemetry.tracing.otlp_endpoint", "")
	viper.SetDefault("telemetry.metrics.textfile", "")
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("virt")
	viper.SetConfigFile(viper.GetString("virtFile"))
	setDefaults()

	// The config file is optional; defaults and VIRT_* variables apply.
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cli.LogFatal(logger, "failed to read config", err, "virtFile", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		cli.LogFatal(logger, "failed to unmarshal config", err, "virtFile", viper.ConfigFileUsed())
	}

	// Auto-enable tracing in debug mode so trace_id appears in log lines.
	// No exporter is set, just log correlation.
	if appConfig.Debug && !appConfig.Telemetry.Tracing.Enabled {
		appConfig.Telemetry.Tracing.Enabled = true
	}

	err := config.Validate(&appConfig)
	if err != nil {
		cli.LogFatal(logger, "validation failed", err, "virtFile", viper.ConfigFileUsed())
	}
}

func initLogger() {
	logger = telemetry.NewLogger(os.Stderr, telemetry.LoggerOptions{
		Debug:   viper.GetBool("debug"),
		JSON:    jsonOutput,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})
}

// initExec sets up telemetry and the exec manager. Exit hooks run in
// reverse order: the reaper kills leftover processes before metrics are
// flushed and the tracer is shut down.
func initExec() {
	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, "virt", appConfig.Telemetry.Tracing)
	if err != nil {
		cli.LogFatal(logger, "failed to initialize tracer", err)
	}

	flushMetrics, err := telemetry.InitMeter(appConfig.Telemetry.Metrics)
	if err != nil {
		cli.LogFatal(logger, "failed to initialize meter", err)
	}

	cli.OnExit(func() {
		if err := flushMetrics(ctx); err != nil {
			logger.Warn("failed to flush metrics", slog.Any("error", err))
		}
		_ = shutdownTracer(ctx)
	})

	execManager = exec.New(
		logger.With("component", "exec"),
		exec.WithMaxProcs(appConfig.Exec.MaxProcs),
		exec.WithShellCommand(appConfig.Exec.Shell, appConfig.Exec.ShellFlag),
		exec.WithDefaultBufferCapacity(appConfig.Exec.BufferCapacity),
	)

	reaper := execManager.Reaper()
	cli.OnExit(func() {
		if n := reaper.Reap(); n > 0 {
			logger.Info("killed running commands on exit", slog.Int("count", n))
		}
	})
}
