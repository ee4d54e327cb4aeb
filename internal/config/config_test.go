// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsWhenEnvUnset(t *testing.T) {
	cfg := New()
	assert.Equal(t, defaultCodeLLDBAdapterPath, cfg.CodeLLDBAdapterPath())
	assert.Equal(t, defaultBRPEndpoint, cfg.BRPEndpoint())
	assert.Equal(t, defaultBRPTimeoutMs*time.Millisecond, cfg.BRPTimeout())
	assert.Equal(t, defaultGeminiBaseURL, cfg.GeminiBaseURL())
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CODELLDB_ADAPTER_PATH", "/opt/codelldb")
	t.Setenv("BRP_ENDPOINT", "http://example.test:9999")
	t.Setenv("BRP_TIMEOUT_MS", "5000")
	t.Setenv("GEMINI_BASE_URL", "http://example.test/v1")

	cfg := New()
	assert.Equal(t, "/opt/codelldb", cfg.CodeLLDBAdapterPath())
	assert.Equal(t, "http://example.test:9999", cfg.BRPEndpoint())
	assert.Equal(t, 5000*time.Millisecond, cfg.BRPTimeout())
	assert.Equal(t, "http://example.test/v1", cfg.GeminiBaseURL())
}

func TestHTTPSProxyReadFromEitherCase(t *testing.T) {
	t.Setenv("https_proxy", "http://proxy.test:8080")
	cfg := New()
	assert.Equal(t, "http://proxy.test:8080", cfg.HTTPSProxy())
}

func TestLLMAPIKeyFallsBackToEnvWhenKeyringUnavailable(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-key")
	cfg := New()

	key, err := cfg.LLMAPIKey()
	// In a sandboxed test environment the OS keychain is typically
	// unavailable, so this falls through to the environment variable; if a
	// real keychain happens to already hold a different credential for
	// this service/user pair, that takes precedence instead.
	if err == nil {
		assert.NotEmpty(t, key)
	}
}

func TestLLMAPIKeyErrorsWhenNothingConfigured(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	cfg := New()

	if _, err := cfg.LLMAPIKey(); err != nil {
		assert.Error(t, err)
	}
}

func TestWorkingDirDefaultsAndSets(t *testing.T) {
	cfg := New()
	assert.Equal(t, ".", cfg.WorkingDir())
	cfg.SetWorkingDir("/tmp/workspace")
	assert.Equal(t, "/tmp/workspace", cfg.WorkingDir())
}
