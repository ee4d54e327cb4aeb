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

// Package config binds the bridge's environment-sourced settings through
// viper: the DAP adapter path, the BRP endpoint and timeout, the LLM
// streaming base URL, and an optional HTTPS proxy that is surfaced for
// logging but otherwise left to net/http's default transport to honor. The
// LLM bearer token is resolved through the OS keychain first, falling back
// to an environment variable.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// keyringService namespaces the bridge's credential in the OS keychain.
const keyringService = "teradata-bridge"

// keyringUser is the keychain account name the LLM bearer token is stored
// under; the bridge has exactly one active credential at a time.
const keyringUser = "llm-api-key"

const (
	keyCodeLLDBAdapterPath = "codelldb_adapter_path"
	keyBRPEndpoint         = "brp_endpoint"
	keyBRPTimeoutMs        = "brp_timeout_ms"
	keyGeminiBaseURL       = "gemini_base_url"
	keyHTTPSProxy          = "https_proxy"

	defaultCodeLLDBAdapterPath = "codelldb"
	defaultBRPEndpoint         = "http://127.0.0.1:15721"
	defaultBRPTimeoutMs        = 10000
	defaultGeminiBaseURL       = "http://127.0.0.1:8045/v1"
)

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
)

// Config is the bridge's environment-sourced configuration, read once at
// startup and safe for concurrent reads thereafter.
type Config struct {
	v *viper.Viper

	mu         sync.RWMutex
	workingDir string
}

// New builds a Config by reading the process environment. Env vars take
// precedence over the defaults below; nothing is read from a file.
func New() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyCodeLLDBAdapterPath, defaultCodeLLDBAdapterPath)
	v.SetDefault(keyBRPEndpoint, defaultBRPEndpoint)
	v.SetDefault(keyBRPTimeoutMs, defaultBRPTimeoutMs)
	v.SetDefault(keyGeminiBaseURL, defaultGeminiBaseURL)

	_ = v.BindEnv(keyCodeLLDBAdapterPath, "CODELLDB_ADAPTER_PATH")
	_ = v.BindEnv(keyBRPEndpoint, "BRP_ENDPOINT")
	_ = v.BindEnv(keyBRPTimeoutMs, "BRP_TIMEOUT_MS")
	_ = v.BindEnv(keyGeminiBaseURL, "GEMINI_BASE_URL")
	_ = v.BindEnv(keyHTTPSProxy, "HTTPS_PROXY", "https_proxy")
	_ = v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm_api_key", "LLM_API_KEY")

	return &Config{v: v, workingDir: "."}
}

// Get returns the process-wide configuration, reading the environment on
// first access.
func Get() *Config {
	globalConfigOnce.Do(func() {
		globalConfig = New()
	})
	return globalConfig
}

// Set replaces the process-wide configuration, for tests that need to
// inject specific environment values.
func Set(cfg *Config) {
	globalConfig = cfg
}

// WorkingDir returns the working directory tool operations resolve
// relative paths against.
func (c *Config) WorkingDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workingDir
}

// SetWorkingDir changes the working directory tool operations resolve
// relative paths against.
func (c *Config) SetWorkingDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workingDir = dir
}

// CodeLLDBAdapterPath returns the DAP adapter binary to spawn for
// attach, from CODELLDB_ADAPTER_PATH or "codelldb" on PATH.
func (c *Config) CodeLLDBAdapterPath() string {
	return c.v.GetString(keyCodeLLDBAdapterPath)
}

// BRPEndpoint returns the BRP JSON-RPC endpoint, from BRP_ENDPOINT or
// the default loopback port.
func (c *Config) BRPEndpoint() string {
	return c.v.GetString(keyBRPEndpoint)
}

// BRPTimeout returns the BRP HTTP client timeout, from BRP_TIMEOUT_MS or
// a 10s default.
func (c *Config) BRPTimeout() time.Duration {
	return time.Duration(c.v.GetInt(keyBRPTimeoutMs)) * time.Millisecond
}

// GeminiBaseURL returns the LLM streaming client's base URL, from
// GEMINI_BASE_URL or the default loopback port.
func (c *Config) GeminiBaseURL() string {
	return c.v.GetString(keyGeminiBaseURL)
}

// HTTPSProxy returns the configured HTTPS proxy, if any. It is surfaced
// for logging only; outbound HTTP clients pick it up themselves via the
// standard HTTPS_PROXY/https_proxy environment variables.
func (c *Config) HTTPSProxy() string {
	return c.v.GetString(keyHTTPSProxy)
}

// IsConfigured reports whether the configuration has been loaded.
func (c *Config) IsConfigured() bool {
	return c.v != nil
}

// LLMAPIKey resolves the bearer token for the LLM streaming client: the OS
// keychain first, falling back to ANTHROPIC_API_KEY then LLM_API_KEY.
func (c *Config) LLMAPIKey() (string, error) {
	if key, err := keyring.Get(keyringService, keyringUser); err == nil && key != "" {
		return key, nil
	}

	if key := c.v.GetString("anthropic_api_key"); key != "" {
		return key, nil
	}
	if key := c.v.GetString("llm_api_key"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("config: no LLM API key in keyring or environment")
}

// SetLLMAPIKey stores the bearer token in the OS keychain.
func (c *Config) SetLLMAPIKey(key string) error {
	return keyring.Set(keyringService, keyringUser, key)
}
