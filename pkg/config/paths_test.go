// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBridgeDataDir(t *testing.T) {
	originalEnv := os.Getenv("BRIDGE_DATA_DIR")
	defer func() {
		if originalEnv != "" {
			_ = os.Setenv("BRIDGE_DATA_DIR", originalEnv)
		} else {
			_ = os.Unsetenv("BRIDGE_DATA_DIR")
		}
	}()

	t.Run("default to ~/.bridge", func(t *testing.T) {
		_ = os.Unsetenv("BRIDGE_DATA_DIR")

		dataDir := GetBridgeDataDir()

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, ".bridge")
		assert.Equal(t, expected, dataDir)
	})

	t.Run("use BRIDGE_DATA_DIR when set", func(t *testing.T) {
		customDir := "/custom/bridge/data"
		_ = os.Setenv("BRIDGE_DATA_DIR", customDir)

		dataDir := GetBridgeDataDir()

		assert.Equal(t, customDir, dataDir)
	})

	t.Run("expand ~ in BRIDGE_DATA_DIR", func(t *testing.T) {
		_ = os.Setenv("BRIDGE_DATA_DIR", "~/custom/.bridge")

		dataDir := GetBridgeDataDir()

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, "custom", ".bridge")
		assert.Equal(t, expected, dataDir)
	})

	t.Run("make relative path absolute in BRIDGE_DATA_DIR", func(t *testing.T) {
		_ = os.Setenv("BRIDGE_DATA_DIR", "relative/path")

		dataDir := GetBridgeDataDir()

		assert.True(t, filepath.IsAbs(dataDir))
		assert.True(t, strings.HasSuffix(dataDir, "relative/path") || strings.HasSuffix(dataDir, "relative\\path"))
	})
}

func TestGetBridgeSandboxDirFallsBackToDataDir(t *testing.T) {
	_ = os.Unsetenv("BRIDGE_SANDBOX_DIR")
	_ = os.Setenv("BRIDGE_DATA_DIR", "/custom/bridge")
	defer func() {
		_ = os.Unsetenv("BRIDGE_DATA_DIR")
	}()

	assert.Equal(t, "/custom/bridge", GetBridgeSandboxDir())
}

func TestGetBridgeSubDir(t *testing.T) {
	originalEnv := os.Getenv("BRIDGE_DATA_DIR")
	defer func() {
		if originalEnv != "" {
			_ = os.Setenv("BRIDGE_DATA_DIR", originalEnv)
		} else {
			_ = os.Unsetenv("BRIDGE_DATA_DIR")
		}
	}()

	t.Run("return subdirectory path", func(t *testing.T) {
		_ = os.Unsetenv("BRIDGE_DATA_DIR")

		evidenceDir := GetBridgeSubDir("evidence")

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, ".bridge", "evidence")
		assert.Equal(t, expected, evidenceDir)
	})

	t.Run("respect BRIDGE_DATA_DIR for subdirectories", func(t *testing.T) {
		customDir := "/custom/bridge"
		_ = os.Setenv("BRIDGE_DATA_DIR", customDir)

		evidenceDir := GetBridgeSubDir("evidence")

		expected := filepath.Join(customDir, "evidence")
		assert.Equal(t, expected, evidenceDir)
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand tilde",
			input:    "~/test/path",
			expected: filepath.Join(homeDir, "test", "path"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:  "relative path made absolute",
			input: "relative/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)

			if tt.name == "relative path made absolute" {
				assert.True(t, filepath.IsAbs(result))
				assert.True(t, strings.HasSuffix(result, "relative/path") || strings.HasSuffix(result, "relative\\path"))
			} else {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
