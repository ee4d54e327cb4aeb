// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// All creates all builtin tools bound to baseDir, excluding "batch" which
// needs a registry reference and is registered separately by RegisterAll.
func All(baseDir string) []shuttle.Tool {
	return []shuttle.Tool{
		NewFileReadTool(baseDir),
		NewFileWriteTool(baseDir),
		NewShellExecuteTool(baseDir),
		NewEditFileTool(baseDir),
		NewMultiEditTool(baseDir),
		NewGlobTool(baseDir),
		NewTodoReadTool(baseDir),
		NewTodoWriteTool(baseDir),
		NewASTSearchTool(baseDir),
		NewListDirectoryTool(baseDir),
	}
}

// ByName returns a builtin tool by name, bound to baseDir. Returns nil if
// not found. "batch" is not constructible this way since it requires a
// registry reference; use RegisterAll to get a registry with batch included.
func ByName(name, baseDir string) shuttle.Tool {
	switch name {
	case "file_read":
		return NewFileReadTool(baseDir)
	case "file_write":
		return NewFileWriteTool(baseDir)
	case "run_command":
		return NewShellExecuteTool(baseDir)
	case "edit_file":
		return NewEditFileTool(baseDir)
	case "multi_edit":
		return NewMultiEditTool(baseDir)
	case "glob":
		return NewGlobTool(baseDir)
	case "todo_read":
		return NewTodoReadTool(baseDir)
	case "todo_write":
		return NewTodoWriteTool(baseDir)
	case "ast_search":
		return NewASTSearchTool(baseDir)
	case "list_directory":
		return NewListDirectoryTool(baseDir)
	default:
		return nil
	}
}

// Names returns the names of all builtin tools, including "batch".
func Names() []string {
	return []string{
		"file_read",
		"file_write",
		"run_command",
		"edit_file",
		"multi_edit",
		"glob",
		"todo_read",
		"todo_write",
		"ast_search",
		"list_directory",
		"batch",
	}
}

// RegisterAll registers every builtin tool with registry, including "batch"
// which dispatches against registry itself.
func RegisterAll(registry *shuttle.Registry, baseDir string) error {
	for _, tool := range All(baseDir) {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return registry.Register(NewBatchTool(registry))
}

// RegisterByNames registers only the specified builtin tools.
func RegisterByNames(registry *shuttle.Registry, baseDir string, names []string) error {
	for _, name := range names {
		if name == "batch" {
			if err := registry.Register(NewBatchTool(registry)); err != nil {
				return err
			}
			continue
		}
		tool := ByName(name, baseDir)
		if tool == nil {
			continue // Skip unknown tools (could be an MCP-provided or custom tool).
		}
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
