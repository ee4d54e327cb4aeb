// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teradata-labs/bridge/internal/brp"
	"github.com/teradata-labs/bridge/internal/config"
	"github.com/teradata-labs/bridge/internal/locks"
	"github.com/teradata-labs/bridge/internal/lsp"
	"github.com/teradata-labs/bridge/internal/version"
	"github.com/teradata-labs/bridge/pkg/shuttle"
	"github.com/teradata-labs/bridge/pkg/shuttle/builtin"
)

// housekeepingSchedule runs runHousekeeping, which logs the file-lock
// registry's state, every five minutes.
const housekeepingSchedule = "@every 5m"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge as a long-lived process",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	baseDir := viper.GetString("base_dir")
	logLevel := viper.GetString("log_level")
	lspCommand := viper.GetString("lsp_server")

	logger := setupLogger(logLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting bridge",
		zap.String("version", version.Get()),
		zap.String("base_dir", baseDir),
		zap.String("data_dir", viper.GetString("data_dir")),
	)

	cfg := config.Get()
	cfg.SetWorkingDir(baseDir)

	registry := shuttle.NewRegistry()
	if err := builtin.RegisterAll(registry, baseDir); err != nil {
		logger.Fatal("failed to register tools", zap.Error(err))
	}
	logger.Info("registered tools", zap.Strings("names", registry.List()))

	brpClient := brp.NewClient(cfg.BRPEndpoint(), cfg.BRPTimeout())
	logger.Info("wired BRP client", zap.String("endpoint", cfg.BRPEndpoint()))
	logger.Info("LLM streaming base URL configured", zap.String("base_url", cfg.GeminiBaseURL()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := brpClient.Ping(ctx); err != nil {
		logger.Warn("BRP endpoint not reachable at startup", zap.Error(err), zap.String("endpoint", cfg.BRPEndpoint()))
	}

	if lspCommand != "" {
		lspClient := lsp.NewClient(lspCommand)
		rootURI := "file://" + baseDir
		if err := lspClient.Initialize(ctx, rootURI); err != nil {
			logger.Warn("LSP server failed to start", zap.Error(err), zap.String("command", lspCommand))
		} else {
			logger.Info("LSP session established",
				zap.String("session_id", lspClient.SessionID()),
				zap.String("command", lspCommand),
				zap.String("root_uri", rootURI),
			)
			if err := lspClient.WatchWorkspace(ctx); err != nil {
				logger.Warn("LSP workspace watcher failed to start", zap.Error(err))
			}
			defer func() {
				shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
				defer shutdownCancel()
				_ = lspClient.Shutdown(shutdownCtx)
			}()
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(housekeepingSchedule, func() { runHousekeeping(logger) }); err != nil {
		logger.Warn("failed to schedule housekeeping", zap.Error(err))
	} else {
		scheduler.Start()
		defer scheduler.Stop()
	}

	<-ctx.Done()
	logger.Info("bridge shutting down")
	return nil
}

// runHousekeeping logs the current count of held file-path locks (a proxy
// for a stuck writer) and whether the lock registry has been poisoned.
func runHousekeeping(logger *zap.Logger) {
	logger.Info("housekeeping sweep",
		zap.Int("held_file_locks", locks.HeldCount()),
		zap.Bool("lock_registry_poisoned", locks.IsPoisoned()),
	)
}

func setupLogger(logLevel string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		parseLogLevel(logLevel),
	)
	return zap.New(core)
}

func parseLogLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
