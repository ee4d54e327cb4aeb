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
package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/bridge/pkg/mcp/protocol"
)

// InstrumentedClient wraps an MCP Client with structured logging. The
// instrumented operations log the server name, duration, and outcome;
// failures are logged at error level with the underlying error.
// IsInitialized, Close, Ping, SetSamplingHandler and UnsubscribeResource
// delegate to the wrapped Client without logging.
//
// This wrapper is transparent and can wrap any Client.
type InstrumentedClient struct {
	client     *Client
	logger     *zap.Logger
	serverName string
}

// NewInstrumentedClient creates a new instrumented MCP client.
// If logger is nil, the package-level logger is used.
func NewInstrumentedClient(client *Client, logger *zap.Logger, serverName string) *InstrumentedClient {
	return &InstrumentedClient{
		client:     client,
		logger:     logger,
		serverName: serverName,
	}
}

func (ic *InstrumentedClient) log() *zap.Logger {
	if ic.logger != nil {
		return ic.logger
	}
	return zap.L()
}

func (ic *InstrumentedClient) op(operation string) *zap.Logger {
	return ic.log().With(
		zap.String("mcp_server", ic.serverName),
		zap.String("mcp_operation", operation),
	)
}

// Initialize performs the MCP handshake.
func (ic *InstrumentedClient) Initialize(ctx context.Context, clientInfo protocol.Implementation) error {
	start := time.Now()
	logger := ic.op("initialize")

	err := ic.client.Initialize(ctx, clientInfo)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp initialize failed", zap.Duration("duration", duration), zap.Error(err))
		return err
	}

	logger.Info("mcp initialize completed",
		zap.Duration("duration", duration),
		zap.String("server_name", ic.client.serverInfo.Name),
		zap.String("server_version", ic.client.serverInfo.Version),
		zap.String("protocol_version", ic.client.protocolVersion),
	)
	return nil
}

// ListTools lists available tools.
func (ic *InstrumentedClient) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	start := time.Now()
	logger := ic.op("tools.list")

	tools, err := ic.client.ListTools(ctx)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp tools.list failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	logger.Info("mcp tools.list completed", zap.Duration("duration", duration), zap.Int("tool_count", len(tools)))
	return tools, nil
}

// CallTool calls a tool.
// Returns interface{} to avoid import cycles (actual type is *protocol.CallToolResult).
func (ic *InstrumentedClient) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (interface{}, error) {
	start := time.Now()
	logger := ic.op("tools.call").With(zap.String("mcp_tool", name))

	resultInterface, err := ic.client.CallTool(ctx, name, arguments)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp tools.call failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	result, ok := resultInterface.(*protocol.CallToolResult)
	if !ok {
		logger.Warn("mcp tools.call returned unexpected result type", zap.Duration("duration", duration))
		return resultInterface, nil
	}

	logger.Info("mcp tools.call completed",
		zap.Duration("duration", duration),
		zap.Bool("tool_error", result.IsError),
	)
	return resultInterface, nil
}

// ListResources lists available resources.
func (ic *InstrumentedClient) ListResources(ctx context.Context) ([]protocol.Resource, error) {
	start := time.Now()
	logger := ic.op("resources.list")

	resources, err := ic.client.ListResources(ctx)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp resources.list failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	logger.Info("mcp resources.list completed", zap.Duration("duration", duration), zap.Int("resource_count", len(resources)))
	return resources, nil
}

// ReadResource reads a resource.
func (ic *InstrumentedClient) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	start := time.Now()
	logger := ic.op("resources.read").With(zap.String("mcp_uri", uri))

	contents, err := ic.client.ReadResource(ctx, uri)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp resources.read failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	logger.Info("mcp resources.read completed", zap.Duration("duration", duration))
	return contents, nil
}

// SubscribeResource subscribes to resource updates.
func (ic *InstrumentedClient) SubscribeResource(ctx context.Context, uri string) error {
	start := time.Now()
	logger := ic.op("resources.subscribe").With(zap.String("mcp_uri", uri))

	err := ic.client.SubscribeResource(ctx, uri)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp resources.subscribe failed", zap.Duration("duration", duration), zap.Error(err))
		return err
	}

	logger.Info("mcp resources.subscribe completed", zap.Duration("duration", duration))
	return nil
}

// ListPrompts lists available prompts.
func (ic *InstrumentedClient) ListPrompts(ctx context.Context) ([]protocol.Prompt, error) {
	start := time.Now()
	logger := ic.op("prompts.list")

	prompts, err := ic.client.ListPrompts(ctx)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp prompts.list failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	logger.Info("mcp prompts.list completed", zap.Duration("duration", duration), zap.Int("prompt_count", len(prompts)))
	return prompts, nil
}

// GetPrompt gets a prompt.
func (ic *InstrumentedClient) GetPrompt(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.GetPromptResult, error) {
	start := time.Now()
	logger := ic.op("prompts.get").With(zap.String("mcp_prompt", name))

	result, err := ic.client.GetPrompt(ctx, name, arguments)
	duration := time.Since(start)

	if err != nil {
		logger.Error("mcp prompts.get failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	logger.Info("mcp prompts.get completed", zap.Duration("duration", duration))
	return result, nil
}

// IsInitialized delegates to the underlying client.
func (ic *InstrumentedClient) IsInitialized() bool {
	return ic.client.IsInitialized()
}

// Close delegates to the underlying client.
func (ic *InstrumentedClient) Close() error {
	return ic.client.Close()
}

// Ping delegates to the underlying client.
func (ic *InstrumentedClient) Ping(ctx context.Context) error {
	return ic.client.Ping(ctx)
}

// SetSamplingHandler delegates to the underlying client.
func (ic *InstrumentedClient) SetSamplingHandler(handler SamplingHandler) {
	ic.client.SetSamplingHandler(handler)
}

// UnsubscribeResource delegates to the underlying client.
func (ic *InstrumentedClient) UnsubscribeResource(ctx context.Context, uri string) error {
	return ic.client.UnsubscribeResource(ctx, uri)
}
