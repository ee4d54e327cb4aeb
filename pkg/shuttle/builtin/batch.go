// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// BatchTool dispatches a list of {tool, parameters} calls against a
// registry in a single invocation. Items run sequentially, in order; a
// single item failing never aborts the rest of the batch - each item's
// outcome is collected independently.
type BatchTool struct {
	registry *shuttle.Registry
}

// NewBatchTool creates a new batch tool dispatching against registry.
func NewBatchTool(registry *shuttle.Registry) *BatchTool {
	return &BatchTool{registry: registry}
}

func (t *BatchTool) Name() string { return "batch" }

func (t *BatchTool) Description() string {
	return `Runs a list of tool calls in one invocation, each as {tool, parameters}.

Items execute sequentially, in order. Every item reports its own {tool,
status, output|error}; a failure in one item never prevents the others
from running or being reported.`
}

func (t *BatchTool) InputSchema() *shuttle.JSONSchema {
	itemSchema := shuttle.NewObjectSchema(
		"A single batched tool call",
		map[string]*shuttle.JSONSchema{
			"tool":       shuttle.NewStringSchema("Name of a registered tool (required)"),
			"parameters": shuttle.NewObjectSchema("Parameters to pass to the tool", map[string]*shuttle.JSONSchema{}, nil),
		},
		[]string{"tool"},
	)
	return shuttle.NewObjectSchema(
		"Parameters for a batch of tool calls",
		map[string]*shuttle.JSONSchema{
			"calls": shuttle.NewArraySchema("Ordered list of tool calls to run (required)", itemSchema),
		},
		[]string{"calls"},
	)
}

type batchItemResult struct {
	Index  int         `json:"index"`
	Tool   string      `json:"tool"`
	Status string      `json:"status"`
	Output interface{} `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (t *BatchTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	raw, ok := params["calls"].([]interface{})
	if !ok || len(raw) == 0 {
		return errResult(start, "INVALID_PARAMS", "calls is required and must be a non-empty array", "Provide at least one {tool, parameters} call"), nil
	}

	type item struct {
		tool       string
		parameters map[string]interface{}
	}
	items := make([]item, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("calls[%d] must be an object", i), ""), nil
		}
		toolName, _ := m["tool"].(string)
		if toolName == "" {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("calls[%d].tool is required", i), ""), nil
		}
		toolParams, _ := m["parameters"].(map[string]interface{})
		if toolParams == nil {
			toolParams = map[string]interface{}{}
		}
		items = append(items, item{tool: toolName, parameters: toolParams})
	}

	results := make([]batchItemResult, len(items))
	for i, it := range items {
		results[i] = t.runOne(ctx, i, it.tool, it.parameters)
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Status == "success" {
			succeeded++
		} else {
			failed++
		}
	}

	return &shuttle.Result{
		Success: failed == 0,
		Data: map[string]interface{}{
			"results":   results,
			"succeeded": succeeded,
			"failed":    failed,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *BatchTool) runOne(ctx context.Context, index int, toolName string, parameters map[string]interface{}) batchItemResult {
	tool, ok := t.registry.Get(toolName)
	if !ok {
		return batchItemResult{Index: index, Tool: toolName, Status: "error", Error: fmt.Sprintf("unknown tool: %s", toolName)}
	}

	result, err := tool.Execute(ctx, parameters)
	if err != nil {
		return batchItemResult{Index: index, Tool: toolName, Status: "error", Error: err.Error()}
	}
	if !result.Success {
		msg := "tool reported failure"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return batchItemResult{Index: index, Tool: toolName, Status: "error", Error: msg}
	}
	return batchItemResult{Index: index, Tool: toolName, Status: "success", Output: result.Data}
}

func (t *BatchTool) Backend() string { return "" }
