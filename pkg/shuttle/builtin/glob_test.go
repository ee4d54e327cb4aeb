// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobFindsMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte(""), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte(""), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte(""), 0600))

	tool := NewGlobTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "**/*.go"})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, 2, data["count"])
}

func TestGlobNoMatchesFriendlyMessage(t *testing.T) {
	dir := t.TempDir()
	tool := NewGlobTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "**/*.nope"})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, 0, data["count"])
	assert.Contains(t, data["message"], "No files matched")
}

func TestGlobTruncatesAtMax(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < MaxGlobMatches+10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepathName(i)), []byte(""), 0600))
	}

	tool := NewGlobTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "**/*.dat"})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, MaxGlobMatches, data["count"])
	assert.Equal(t, true, data["truncated"])
	assert.Equal(t, MaxGlobMatches+10, data["total_matches"])
}

func filepathName(i int) string {
	return "file" + strconv.Itoa(i) + ".dat"
}

func TestGlobFuzzyRanksNonGlobPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handler.go"), []byte(""), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.go"), []byte(""), 0600))

	tool := NewGlobTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "handlr"})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]interface{})
	matches := data["matches"].([]string)
	require.NotEmpty(t, matches)
	assert.Equal(t, "handler.go", matches[0])
}
