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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teradata-labs/bridge/internal/version"
	bridgeconfig "github.com/teradata-labs/bridge/pkg/config"
)

// rootCmd is the bridge CLI's entry point; its subcommands (serve, version)
// do the actual work.
var rootCmd = &cobra.Command{
	Use:     "bridge",
	Short:   "Agent tooling and protocol bridge core",
	Long:    `bridge hosts the LSP, DAP, and BRP protocol bridges and the tool-execution layer as a single long-lived process, driven over stdio by an external agent loop.`,
	Version: version.Get(),
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViperEnv)

	rootCmd.PersistentFlags().String("base-dir", ".", "Workspace directory tool operations resolve relative paths against")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", bridgeconfig.GetBridgeDataDir(), "Bridge data directory, reported in the startup log (default: $BRIDGE_DATA_DIR or ~/.bridge); the DAP audit log, its index and the todo file are written relative to the working directory, not here")
	rootCmd.PersistentFlags().String("lsp-server", "", "Language server command to spawn for definition/references/diagnostics operations (empty disables LSP)")

	_ = viper.BindPFlag("base_dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("lsp_server", rootCmd.PersistentFlags().Lookup("lsp-server"))

	rootCmd.AddCommand(serveCmd)
}

// initViperEnv lets any BRIDGE_-prefixed environment variable override a
// bound flag that was not set on the command line (flags > env > defaults;
// no config file is read).
func initViperEnv() {
	viper.SetEnvPrefix("bridge")
	viper.AutomaticEnv()
}
