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
	"fmt"
	"time"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

// Executor dispatches tool calls by name, validating arguments against the
// tool's declared schema before execution and timing each call.
type Executor struct {
	registry          *Registry
	permissionChecker *PermissionChecker
}

// NewExecutor creates a new tool executor bound to a registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// SetPermissionChecker configures permission checking for tool execution.
func (e *Executor) SetPermissionChecker(checker *PermissionChecker) {
	e.permissionChecker = checker
}

// Execute executes a tool by name with the given parameters.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	tool, ok := e.registry.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", toolName)
	}
	return e.ExecuteWithTool(ctx, tool, params)
}

// ExecuteWithTool executes a specific tool instance (not necessarily from the registry).
func (e *Executor) ExecuteWithTool(ctx context.Context, tool Tool, params map[string]interface{}) (*Result, error) {
	toolName := tool.Name()

	if e.permissionChecker != nil {
		if err := e.permissionChecker.CheckPermission(ctx, toolName, params); err != nil {
			return &Result{
				Success: false,
				Error:   &Error{Code: "permission_denied", Message: err.Error(), Retryable: false},
			}, nil
		}
	}

	// LLMs naturally use snake_case, but some tools expect camelCase.
	normalized := normalizeParametersToSchema(tool, params)

	if err := validateAgainstSchema(tool.InputSchema(), normalized); err != nil {
		return &Result{
			Success: false,
			Error: &Error{
				Code:      "CONTRACT_VIOLATION",
				Message:   err.Error(),
				Retryable: false,
			},
		}, nil
	}

	start := time.Now()
	result, err := tool.Execute(ctx, normalized)
	duration := time.Since(start)

	if err != nil {
		return &Result{
			Success:         false,
			Error:           &Error{Code: "execution_failed", Message: err.Error(), Retryable: false},
			ExecutionTimeMs: duration.Milliseconds(),
		}, nil
	}

	if result == nil {
		result = &Result{Success: true}
	}
	// Executor timing is authoritative, even if the tool already set it.
	result.ExecutionTimeMs = duration.Milliseconds()

	return result, nil
}

// validateAgainstSchema checks a tool call's argument blob against its
// declared InputSchema, surfacing a Contract error instead of letting a
// malformed call reach a type assertion deep inside a tool.
func validateAgainstSchema(schema *JSONSchema, params map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	schemaJSON, err := schema.ToJSON()
	if err != nil {
		return nil // Schema can't be marshaled, nothing to validate against.
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil // Schema itself isn't valid JSON Schema; skip validation rather than block execution.
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid tool arguments: %v", msgs)
}

// ListAvailableTools returns all tools available in the executor's registry.
func (e *Executor) ListAvailableTools() []Tool {
	return e.registry.ListTools()
}

// ListToolsByBackend returns all tools for a specific backend.
func (e *Executor) ListToolsByBackend(backend string) []Tool {
	return e.registry.ListByBackend(backend)
}

// normalizeParametersToSchema normalizes parameter names to match the tool's schema.
// This handles the common issue where LLMs use snake_case but tools expect camelCase (or vice versa).
func normalizeParametersToSchema(tool Tool, params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return params
	}

	schema := tool.InputSchema()
	if schema == nil || schema.Properties == nil {
		return params // No schema to normalize against.
	}

	schemaKeys := make(map[string]string)
	for key := range schema.Properties {
		schemaKeys[toLowerUnderscore(key)] = key
	}

	normalized := make(map[string]interface{}, len(params))
	for key, value := range params {
		normalizedKey := toLowerUnderscore(key)
		if schemaKey, exists := schemaKeys[normalizedKey]; exists {
			normalized[schemaKey] = value
		} else {
			normalized[key] = value
		}
	}

	return normalized
}

// toLowerUnderscore converts any naming convention to lowercase with underscores.
// This allows matching camelCase, snake_case, PascalCase, etc.
func toLowerUnderscore(s string) string {
	if s == "" {
		return ""
	}

	var result []rune
	for i, r := range s {
		lower := unicode.ToLower(r)
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '_')
		}
		result = append(result, lower)
	}

	return string(result)
}
