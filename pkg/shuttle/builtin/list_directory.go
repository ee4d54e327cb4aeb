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
	"time"

	"github.com/teradata-labs/bridge/internal/fsext"
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// DefaultListDirectoryDepth and DefaultListDirectoryLimit bound an
// unqualified listing so it stays small enough for an LLM context window.
const (
	DefaultListDirectoryDepth = 3
	DefaultListDirectoryLimit = 100
)

// ListDirectoryTool lists files and directories under a path relative to
// baseDir, the way a shell "ls -R" would but capped in depth and count.
type ListDirectoryTool struct {
	baseDir string
}

// NewListDirectoryTool creates a new directory-listing tool bound to baseDir.
func NewListDirectoryTool(baseDir string) *ListDirectoryTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &ListDirectoryTool{baseDir: baseDir}
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Description() string {
	return `Lists files and subdirectories under a path relative to the working directory.

Walks up to 3 levels deep and returns up to 100 entries by default. Use this
to get oriented in a directory tree before reading or editing specific files.`
}

func (t *ListDirectoryTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for listing a directory",
		map[string]*shuttle.JSONSchema{
			"path":  shuttle.NewStringSchema("Directory to list, relative to the working directory (default: '.')"),
			"depth": shuttle.NewNumberSchema("How many directory levels to descend (default: 3)"),
			"limit": shuttle.NewNumberSchema("Maximum number of entries to return (default: 100)"),
		},
		nil,
	)
}

func (t *ListDirectoryTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	rel, _ := params["path"].(string)
	if rel == "" {
		rel = "."
	}

	depth := DefaultListDirectoryDepth
	if d, ok := params["depth"].(float64); ok && d > 0 {
		depth = int(d)
	}

	limit := DefaultListDirectoryLimit
	if l, ok := params["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	target := filepath.Clean(rel)
	if !filepath.IsAbs(target) {
		target = filepath.Join(t.baseDir, target)
	}

	if !fsext.Exists(target) {
		return errResult(start, "NOT_FOUND", fmt.Sprintf("Path not found: %s", fsext.PrettyPath(target)), "Check the path and try again"), nil
	}
	if !fsext.IsDir(target) {
		return errResult(start, "NOT_A_DIRECTORY", fmt.Sprintf("Path is not a directory: %s", fsext.PrettyPath(target)), "Provide a directory path, or use file_read to read a single file"), nil
	}

	entries, truncated, err := fsext.ListDirectory(target, nil, depth, limit)
	if err != nil {
		return errResult(start, "LIST_FAILED", fmt.Sprintf("Failed to list directory: %v", err), "Check the path is readable"), nil
	}

	relEntries := make([]string, len(entries))
	for i, e := range entries {
		r, err := filepath.Rel(t.baseDir, e)
		if err != nil {
			r = e
		}
		relEntries[i] = r
	}

	data := map[string]interface{}{
		"path":    rel,
		"entries": relEntries,
		"count":   len(relEntries),
	}
	if truncated {
		data["truncated"] = true
		data["notice"] = fmt.Sprintf("Listing truncated at %d entries; narrow the path or lower depth to see more.", limit)
	}

	return &shuttle.Result{
		Success:         true,
		Data:            data,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *ListDirectoryTool) Backend() string { return "" }
