// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiEditAppliesAllEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one two three"), 0600))

	tool := NewMultiEditTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.txt",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "one", "new_string": "1"},
			map[string]interface{}{"old_string": "two", "new_string": "2"},
			map[string]interface{}{"old_string": "three", "new_string": "3"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3", string(data))
}

func TestMultiEditIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	original := "one two three"
	require.NoError(t, os.WriteFile(path, []byte(original), 0600))

	tool := NewMultiEditTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.txt",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "one", "new_string": "1"},
			map[string]interface{}{"old_string": "missing-text", "new_string": "x"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "STRING_NOT_FOUND", result.Error.Code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "no edits should have been written when any edit fails")
}

func TestMultiEditReplaceAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo foo foo"), 0600))

	tool := NewMultiEditTool(dir)
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.txt",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "foo", "new_string": "bar", "replace_all": true},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar bar bar", string(data))
}
