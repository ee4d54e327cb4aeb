// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teradata-labs/bridge/internal/locks"
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// EditFileTool replaces the first occurrence of a string in a file.
// It serializes against other writers of the same path via the file-path
// lock registry.
type EditFileTool struct {
	baseDir string
}

// NewEditFileTool creates a new edit_file tool bound to baseDir.
func NewEditFileTool(baseDir string) *EditFileTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &EditFileTool{baseDir: baseDir}
}

func (t *EditFileTool) Name() string { return "edit_file" }

func (t *EditFileTool) Description() string {
	return `Replaces the first occurrence of old_string with new_string in a file.

Fails if old_string is not found in the file. When old_string occurs more
than once, only the first occurrence is replaced - include enough
surrounding context in old_string to select the intended location.`
}

func (t *EditFileTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for editing a file",
		map[string]*shuttle.JSONSchema{
			"path":       shuttle.NewStringSchema("File path to edit (required)"),
			"old_string": shuttle.NewStringSchema("Exact text to find and replace (required)"),
			"new_string": shuttle.NewStringSchema("Replacement text (required)"),
		},
		[]string{"path", "old_string", "new_string"},
	)
}

func (t *EditFileTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	path, _ := params["path"].(string)
	if path == "" {
		return errResult(start, "INVALID_PARAMS", "path is required", "Provide a file path to edit"), nil
	}
	oldString, ok := params["old_string"].(string)
	if !ok || oldString == "" {
		return errResult(start, "INVALID_PARAMS", "old_string is required", "Provide the exact text to replace"), nil
	}
	newString, _ := params["new_string"].(string)

	cleanPath := resolvePath(t.baseDir, path)
	if isSensitivePath(cleanPath) {
		return errResult(start, "UNSAFE_PATH", fmt.Sprintf("Cannot edit sensitive location: %s", cleanPath), "Use a path in the current directory"), nil
	}

	handle, err := locks.Acquire(cleanPath)
	if err != nil {
		return errResult(start, "LOCK_FAILED", err.Error(), "Retry once other operations on this file complete"), nil
	}
	defer handle.Release()

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return errResult(start, "READ_FAILED", fmt.Sprintf("Failed to read file: %v", err), "Check the path exists"), nil
	}
	content := string(data)

	count := strings.Count(content, oldString)
	if count == 0 {
		return errResult(start, "STRING_NOT_FOUND", "old_string was not found in the file", "Check the exact text, including whitespace"), nil
	}

	updated := strings.Replace(content, oldString, newString, 1)

	if err := os.WriteFile(cleanPath, []byte(updated), 0600); err != nil {
		return errResult(start, "WRITE_FAILED", fmt.Sprintf("Failed to write file: %v", err), ""), nil
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":        cleanPath,
			"occurrences": count,
			"replaced":    1,
		},
		Metadata: map[string]interface{}{
			"diff": unifiedDiff(content, updated),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *EditFileTool) Backend() string { return "" }

func resolvePath(baseDir, path string) string {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(baseDir, cleanPath)
	}
	return cleanPath
}

func errResult(start time.Time, code, message, suggestion string) *shuttle.Result {
	return &shuttle.Result{
		Success: false,
		Error: &shuttle.Error{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
}
