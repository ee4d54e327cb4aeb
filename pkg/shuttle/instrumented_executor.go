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
package shuttle

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// InstrumentedExecutor wraps an Executor with structured logging around every
// tool call: tool name, backend, duration, success/failure and error code.
// This wrapper is transparent and can wrap any Executor.
type InstrumentedExecutor struct {
	executor *Executor
	logger   *zap.Logger
}

// NewInstrumentedExecutor creates a new instrumented tool executor.
// If logger is nil, the package-level logger is used.
func NewInstrumentedExecutor(executor *Executor, logger *zap.Logger) *InstrumentedExecutor {
	return &InstrumentedExecutor{
		executor: executor,
		logger:   logger,
	}
}

// Execute executes a tool by name with logging instrumentation.
func (e *InstrumentedExecutor) Execute(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	start := time.Now()
	result, err := e.executor.Execute(ctx, toolName, params)
	e.log(toolName, start, result, err)
	return result, err
}

// ExecuteWithTool executes a specific tool instance with logging instrumentation.
func (e *InstrumentedExecutor) ExecuteWithTool(ctx context.Context, tool Tool, params map[string]interface{}) (*Result, error) {
	start := time.Now()
	result, err := e.executor.ExecuteWithTool(ctx, tool, params)
	e.log(tool.Name(), start, result, err)
	return result, err
}

func (e *InstrumentedExecutor) log(toolName string, start time.Time, result *Result, err error) {
	logger := e.logger
	if logger == nil {
		logger = zap.L()
	}
	duration := time.Since(start)

	if err != nil {
		logger.Error("tool execution failed",
			zap.String("tool", toolName),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if result.Success {
		logger.Info("tool execution completed",
			zap.String("tool", toolName),
			zap.Duration("duration", duration),
			zap.Int64("execution_time_ms", result.ExecutionTimeMs),
		)
		return
	}

	logger.Warn("tool execution returned error result",
		zap.String("tool", toolName),
		zap.Duration("duration", duration),
		zap.String("error_code", result.Error.Code),
		zap.String("error_message", result.Error.Message),
		zap.Bool("retryable", result.Error.Retryable),
	)
}

// ListAvailableTools delegates to the underlying executor.
func (e *InstrumentedExecutor) ListAvailableTools() []Tool {
	return e.executor.ListAvailableTools()
}

// ListToolsByBackend delegates to the underlying executor.
func (e *InstrumentedExecutor) ListToolsByBackend(backend string) []Tool {
	return e.executor.ListToolsByBackend(backend)
}
