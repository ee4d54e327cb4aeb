// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teradata-labs/bridge/pkg/shuttle"
)

const todoFileName = "todos.json"

// TodoStatus is one of the allowed lifecycle states of a todo item.
type TodoStatus string

// Allowed TodoStatus values.
const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in-progress"
	TodoCompleted  TodoStatus = "completed"
	TodoCancelled  TodoStatus = "cancelled"
)

// TodoPriority is one of the allowed priority levels of a todo item.
type TodoPriority string

// Allowed TodoPriority values.
const (
	TodoHigh   TodoPriority = "high"
	TodoMedium TodoPriority = "medium"
	TodoLow    TodoPriority = "low"
)

// TodoItem is a single entry in the todo list persisted to todos.json.
type TodoItem struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Status   TodoStatus   `json:"status"`
	Priority TodoPriority `json:"priority"`
}

func todoPath(baseDir string) string {
	return filepath.Join(baseDir, todoFileName)
}

func loadTodos(baseDir string) ([]TodoItem, error) {
	data, err := os.ReadFile(todoPath(baseDir))
	if os.IsNotExist(err) {
		return []TodoItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []TodoItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// TodoReadTool reads the current ordered todo list.
type TodoReadTool struct {
	baseDir string
}

// NewTodoReadTool creates a new todo_read tool bound to baseDir.
func NewTodoReadTool(baseDir string) *TodoReadTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &TodoReadTool{baseDir: baseDir}
}

func (t *TodoReadTool) Name() string        { return "todo_read" }
func (t *TodoReadTool) Description() string { return "Reads the current ordered todo list from todos.json." }

func (t *TodoReadTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("todo_read takes no parameters", map[string]*shuttle.JSONSchema{}, nil)
}

func (t *TodoReadTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	items, err := loadTodos(t.baseDir)
	if err != nil {
		return errResult(start, "READ_FAILED", fmt.Sprintf("Failed to read todos: %v", err), ""), nil
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"todos": items,
			"count": len(items),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *TodoReadTool) Backend() string { return "" }

// TodoWriteTool overwrites the todo list with a caller-supplied ordered set
// of items.
type TodoWriteTool struct {
	baseDir string
}

// NewTodoWriteTool creates a new todo_write tool bound to baseDir.
func NewTodoWriteTool(baseDir string) *TodoWriteTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &TodoWriteTool{baseDir: baseDir}
}

func (t *TodoWriteTool) Name() string { return "todo_write" }
func (t *TodoWriteTool) Description() string {
	return `Overwrites the todo list in todos.json with the given ordered list of items.

Each item has an id, content, status (pending, in-progress, completed,
cancelled) and priority (high, medium, low). Reports how many items remain
non-terminal (not completed or cancelled).`
}

func (t *TodoWriteTool) InputSchema() *shuttle.JSONSchema {
	itemSchema := shuttle.NewObjectSchema(
		"A single todo item",
		map[string]*shuttle.JSONSchema{
			"id":      shuttle.NewStringSchema("Stable identifier for the item (required)"),
			"content": shuttle.NewStringSchema("Description of the work (required)"),
			"status": shuttle.NewStringSchema("Lifecycle state (required)").
				WithEnum("pending", "in-progress", "completed", "cancelled"),
			"priority": shuttle.NewStringSchema("Priority level (required)").
				WithEnum("high", "medium", "low"),
		},
		[]string{"id", "content", "status", "priority"},
	)
	return shuttle.NewObjectSchema(
		"Parameters for overwriting the todo list",
		map[string]*shuttle.JSONSchema{
			"todos": shuttle.NewArraySchema("Full ordered list of todo items (required)", itemSchema),
		},
		[]string{"todos"},
	)
}

func (t *TodoWriteTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	raw, ok := params["todos"].([]interface{})
	if !ok {
		return errResult(start, "INVALID_PARAMS", "todos is required and must be an array", "Provide the full ordered todo list"), nil
	}

	items := make([]TodoItem, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("todos[%d] must be an object", i), ""), nil
		}
		id, _ := m["id"].(string)
		content, _ := m["content"].(string)
		status, _ := m["status"].(string)
		priority, _ := m["priority"].(string)
		if id == "" || content == "" {
			return errResult(start, "INVALID_PARAMS", fmt.Sprintf("todos[%d] requires id and content", i), ""), nil
		}
		items = append(items, TodoItem{
			ID:       id,
			Content:  content,
			Status:   TodoStatus(status),
			Priority: TodoPriority(priority),
		})
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return errResult(start, "ENCODE_FAILED", fmt.Sprintf("Failed to encode todos: %v", err), ""), nil
	}
	if err := os.WriteFile(todoPath(t.baseDir), data, 0600); err != nil {
		return errResult(start, "WRITE_FAILED", fmt.Sprintf("Failed to write todos: %v", err), ""), nil
	}

	pending := 0
	for _, item := range items {
		if item.Status != TodoCompleted && item.Status != TodoCancelled {
			pending++
		}
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"count":         len(items),
			"pending_count": pending,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *TodoWriteTool) Backend() string { return "" }
