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
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// MaxGlobMatches caps how many matches glob returns in one call, to keep
// results small enough for an LLM context window.
const MaxGlobMatches = 50

// GlobTool finds files matching a glob pattern relative to baseDir.
type GlobTool struct {
	baseDir string
}

// NewGlobTool creates a new glob tool bound to baseDir.
func NewGlobTool(baseDir string) *GlobTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &GlobTool{baseDir: baseDir}
}

func (t *GlobTool) Name() string { return "glob" }

func (t *GlobTool) Description() string {
	return `Finds files matching a glob pattern (e.g. "**/*.go", "src/*.json").

Returns up to 50 matches sorted by path; a pattern with no glob
metacharacters is matched fuzzily and its results are ordered by
relevance instead. If more than 50 files match, the
result is truncated and a notice is included telling the caller to narrow
the pattern.`
}

func (t *GlobTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for a glob search",
		map[string]*shuttle.JSONSchema{
			"pattern": shuttle.NewStringSchema("Glob pattern to match, relative to the working directory (required)"),
		},
		[]string{"pattern"},
	)
}

func (t *GlobTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()

	pattern, _ := params["pattern"].(string)
	if pattern == "" {
		return errResult(start, "INVALID_PARAMS", "pattern is required", "Provide a glob pattern such as '**/*.go'"), nil
	}

	var matches []string
	var err error
	if isPlainGlob(pattern) {
		matches, err = globMatch(t.baseDir, pattern)
		sort.Strings(matches)
	} else {
		matches, err = fuzzyMatch(t.baseDir, pattern)
	}
	if err != nil {
		return errResult(start, "GLOB_FAILED", fmt.Sprintf("Failed to evaluate pattern: %v", err), "Check the pattern syntax"), nil
	}

	if len(matches) == 0 {
		return &shuttle.Result{
			Success: true,
			Data: map[string]interface{}{
				"pattern": pattern,
				"matches": []string{},
				"count":   0,
				"message": fmt.Sprintf("No files matched pattern %q", pattern),
			},
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	truncated := false
	total := len(matches)
	if total > MaxGlobMatches {
		matches = matches[:MaxGlobMatches]
		truncated = true
	}

	data := map[string]interface{}{
		"pattern": pattern,
		"matches": matches,
		"count":   len(matches),
	}
	if truncated {
		data["truncated"] = true
		data["total_matches"] = total
		data["notice"] = fmt.Sprintf("%d files matched; showing the first %d. Narrow the pattern to see more.", total, MaxGlobMatches)
	}

	return &shuttle.Result{
		Success:         true,
		Data:            data,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (t *GlobTool) Backend() string { return "" }

// globMatch walks baseDir and collects paths (relative to baseDir) whose
// path matches pattern via filepath.Match semantics, extended to support a
// leading "**/" meaning "any number of directories".
func globMatch(baseDir, pattern string) ([]string, error) {
	var matches []string

	recursive := false
	matchPattern := pattern
	if rest, ok := cutPrefix(pattern, "**/"); ok {
		recursive = true
		matchPattern = rest
	}

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries rather than aborting the whole walk
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		if recursive {
			if ok, _ := filepath.Match(matchPattern, filepath.Base(rel)); ok {
				matches = append(matches, rel)
			}
			return nil
		}

		if ok, _ := filepath.Match(pattern, rel); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	return matches, err
}

// isPlainGlob reports whether pattern contains glob metacharacters; when it
// doesn't, the caller is asking for a relevance search over paths rather
// than an exact pattern match.
func isPlainGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]")
}

// fuzzyMatch ranks every file under baseDir by fuzzy relevance to pattern,
// returning paths ordered best-match-first.
func fuzzyMatch(baseDir, pattern string) ([]string, error) {
	var all []string
	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		all = append(all, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranked := fuzzy.Find(pattern, all)
	matches := make([]string, len(ranked))
	for i, r := range ranked {
		matches[i] = r.Str
	}
	return matches, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}
