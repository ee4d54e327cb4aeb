// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetBridgeDataDir returns the bridge's data directory. cmd/bridge logs it
// at startup; the todo file and the DAP audit log are not kept here but
// are written relative to the working directory.
//
// Priority:
// 1. BRIDGE_DATA_DIR environment variable (if set and non-empty)
// 2. ~/.bridge (default)
//
// The returned path is always absolute. Tilde (~) in BRIDGE_DATA_DIR is
// expanded to the user's home directory. Relative paths are made absolute.
//
// This is read directly from os.Getenv(), not viper, so it does not depend
// on viper having been initialised.
func GetBridgeDataDir() string {
	if dataDir := os.Getenv("BRIDGE_DATA_DIR"); dataDir != "" {
		return expandPath(dataDir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".bridge"
	}
	return filepath.Join(homeDir, ".bridge")
}

// GetBridgeSandboxDir returns the configured sandbox directory. The builtin
// tools do not read it: they resolve relative paths against the baseDir
// passed to builtin.All, RegisterAll or ByName (the working directory when
// that is empty).
//
// Priority:
// 1. BRIDGE_SANDBOX_DIR environment variable (if set and non-empty)
// 2. BRIDGE_DATA_DIR (default)
func GetBridgeSandboxDir() string {
	if sandboxDir := os.Getenv("BRIDGE_SANDBOX_DIR"); sandboxDir != "" {
		return expandPath(sandboxDir)
	}
	return GetBridgeDataDir()
}

// GetBridgeSubDir returns a subdirectory within the bridge data directory.
// Example: GetBridgeSubDir("evidence") returns ~/.bridge/evidence.
func GetBridgeSubDir(subdir string) string {
	return filepath.Join(GetBridgeDataDir(), subdir)
}

// expandPath expands a leading ~ and resolves the result to an absolute path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
