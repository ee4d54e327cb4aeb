// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/teradata-labs/bridge/internal/locks"
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// MultiEditTool applies a sequence of edits to a single file atomically:
// every old_string is validated against an in-memory copy of the file
// before anything is written. If any edit's old_string is missing, the
// file on disk is left untouched.
type MultiEditTool struct {
	baseDir string
}

// NewMultiEditTool creates a new multi_edit tool bound to baseDir.
func NewMultiEditTool(baseDir string) *MultiEditTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &MultiEditTool{baseDir: baseDir}
}

func (t *MultiEditTool) Name() string { return "multi_edit" }

func (t *MultiEditTool) Description() string {
	return `Applies multiple string replacements to a single file as one atomic operation.

All edits are validated against an in-memory copy of the file before any
write happens: if any edit's old_string cannot be found, the file is left
completely unchanged and the tool reports which edit failed.`
}

func (t *MultiEditTool) InputSchema() *shuttle.JSONSchema {
	editSchema := shuttle.NewObjectSchema(
		"A single find/replace edit",
		map[string]*shuttle.JSONSchema{
			"old_string":  shuttle.NewStringSchema("Exact text to find (required)"),
			"new_string":  shuttle.NewStringSchema("Replacement text (required)"),
			"replace_all": shuttle.NewBooleanSchema("Replace every occurrence instead of just the first (default: false)").WithDefault(false),
		},
		[]string{"old_string", "new_string"},
	)
	return shuttle.NewObjectSchema(
		"Parameters for applying multiple edits to one file",
		map[string]*shuttle.JSONSchema{
			"path":  shuttle.NewStringSchema("File path to edit (required)"),
			"edits": shuttle.NewArraySchema("Ordered list of edits to apply (required, at least one)", editSchema),
		},
		[]string{"path", "edits"},
	)
}

type editSpec struct {
	OldString  string
	NewString  string
	ReplaceAll bool
}

func (t *MultiEditTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	path, _ := params["path"].(string)
	if path == "" {
		return errResult(start, "INVALID_PARAMS", "path is required", "Provide a file path to edit"), nil
	}

	rawEdits, ok := params["edits"].([]interface{})
	if !ok || len(rawEdits) == 0 {
		return errResult(start, "INVALID_PARAMS", "edits is required and must be a non-empty array", "Provide at least one {old_string, new_string} edit"), nil
	}

	edits := make([]editSpec, 0, len(rawEdits))
	for i, raw := range rawEdits {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("edits[%d] must be an object", i), ""), nil
		}
		oldString, _ := m["old_string"].(string)
		if oldString == "" {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("edits[%d].old_string is required", i), ""), nil
		}
		newString, _ := m["new_string"].(string)
		replaceAll, _ := m["replace_all"].(bool)
		edits = append(edits, editSpec{OldString: oldString, NewString: newString, ReplaceAll: replaceAll})
	}

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
	original := string(data)

	// Apply every edit against an in-memory copy first. If any edit's
	// old_string is missing, bail out before touching the file on disk -
	// all edits succeed together or none are applied.
	content := original
	replacedCounts := make([]int, len(edits))
	for i, e := range edits {
		count := strings.Count(content, e.OldString)
		if count == 0 {
			return errResult(start, "STRING_NOT_FOUND",
				fmt.Sprintf("edits[%d]: old_string was not found in the file; no changes were written", i),
				"Check the exact text of every edit before retrying - all edits must match or none are applied"), nil
		}
		if e.ReplaceAll {
			content = strings.ReplaceAll(content, e.OldString, e.NewString)
			replacedCounts[i] = count
		} else {
			content = strings.Replace(content, e.OldString, e.NewString, 1)
			replacedCounts[i] = 1
		}
	}

	if err := os.WriteFile(cleanPath, []byte(content), 0600); err != nil {
		return errResult(start, "WRITE_FAILED", fmt.Sprintf("Failed to write file: %v", err), ""), nil
	}

	totalReplaced := 0
	for _, c := range replacedCounts {
		totalReplaced += c
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":            cleanPath,
			"edits_applied":   len(edits),
			"total_replaced":  totalReplaced,
			"replaced_counts": replacedCounts,
		},
		Metadata: map[string]interface{}{
			"diff": unifiedDiff(original, content),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *MultiEditTool) Backend() string { return "" }
