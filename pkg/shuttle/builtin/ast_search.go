// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// astGrepBinaries are the executable names probed on PATH, in order of
// preference: "sg" is ast-grep's short alias, "ast-grep" the canonical name.
var astGrepBinaries = []string{"sg", "ast-grep"}

// astGrepMatch mirrors the subset of ast-grep's --json match object this
// tool cares about.
type astGrepMatch struct {
	File  string `json:"file"`
	Range struct {
		Start struct {
			Line int `json:"line"`
		} `json:"start"`
	} `json:"range"`
	Text string `json:"text"`
	Lines string `json:"lines"`
}

// ASTSearchTool runs structural, syntax-aware code search via ast-grep.
type ASTSearchTool struct {
	baseDir string
}

// NewASTSearchTool creates a new ast_search tool bound to baseDir.
func NewASTSearchTool(baseDir string) *ASTSearchTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &ASTSearchTool{baseDir: baseDir}
}

func (t *ASTSearchTool) Name() string { return "ast_search" }

func (t *ASTSearchTool) Description() string {
	return `Searches source code structurally using ast-grep, matching syntax trees
instead of text. Requires "sg" or "ast-grep" on PATH.

Example pattern for Go: "func $NAME($$$) { $$$ }" with lang "go".`
}

func (t *ASTSearchTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for an AST structural search",
		map[string]*shuttle.JSONSchema{
			"pattern": shuttle.NewStringSchema("ast-grep pattern to match (required)"),
			"lang":    shuttle.NewStringSchema("Language to parse as, e.g. 'go', 'python', 'typescript' (required)"),
			"path":    shuttle.NewStringSchema("Directory or file to search (default: working directory)"),
		},
		[]string{"pattern", "lang"},
	)
}

func (t *ASTSearchTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	pattern, _ := params["pattern"].(string)
	if pattern == "" {
		return errResult(start, "INVALID_PARAMS", "pattern is required", "Provide an ast-grep pattern, e.g. 'func $NAME($$$) { $$$ }'"), nil
	}
	lang, _ := params["lang"].(string)
	if lang == "" {
		return errResult(start, "INVALID_PARAMS", "lang is required", "Provide the language to parse as, e.g. 'go'"), nil
	}
	searchPath, _ := params["path"].(string)
	if searchPath == "" {
		searchPath = t.baseDir
	} else {
		searchPath = resolvePath(t.baseDir, searchPath)
	}

	binary := findASTGrepBinary()
	if binary == "" {
		return errResult(start, "TOOL_NOT_FOUND", "Neither 'sg' nor 'ast-grep' was found on PATH",
			"Install ast-grep (https://ast-grep.github.io) to use structural search"), nil
	}

	args := []string{"run", "--pattern", pattern, "--lang", lang, "--json", searchPath}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	if runErr != nil {
		if stdout.Len() == 0 {
			return errResult(start, "COMMAND_FAILED", fmt.Sprintf("%s failed: %v: %s", binary, runErr, stderr.String()), ""), nil
		}
		// ast-grep can exit non-zero on zero matches depending on version;
		// fall through and let the JSON/raw parsing below decide.
	}

	var matches []astGrepMatch
	if err := json.Unmarshal(stdout.Bytes(), &matches); err != nil {
		// Parsing failed; surface the raw output rather than discarding it.
		return &shuttle.Result{
			Success: true,
			Data: map[string]interface{}{
				"pattern":    pattern,
				"lang":       lang,
				"raw_output": stdout.String(),
				"parsed":     false,
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	results := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		results = append(results, map[string]interface{}{
			"file": m.File,
			"line": m.Range.Start.Line + 1, // ast-grep reports 0-based lines
			"text": firstNonEmpty(m.Lines, m.Text),
		})
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"pattern": pattern,
			"lang":    lang,
			"matches": results,
			"count":   len(results),
			"parsed":  true,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *ASTSearchTool) Backend() string { return "" }

func findASTGrepBinary() string {
	for _, name := range astGrepBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
