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

	"github.com/teradata-labs/bridge/pkg/shuttle"
)

func TestBatchCollectsPerItemOutcomes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exists.txt"), []byte("hi"), 0600))

	registry := shuttle.NewRegistry()
	require.NoError(t, registry.Register(NewFileReadTool(dir)))
	batch := NewBatchTool(registry)

	result, err := batch.Execute(context.Background(), map[string]interface{}{
		"calls": []interface{}{
			map[string]interface{}{"tool": "file_read", "parameters": map[string]interface{}{"path": "exists.txt"}},
			map[string]interface{}{"tool": "file_read", "parameters": map[string]interface{}{"path": "missing.txt"}},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Success, "one failing item should mark the batch overall as not fully successful")

	data := result.Data.(map[string]interface{})
	assert.Equal(t, 1, data["succeeded"])
	assert.Equal(t, 1, data["failed"])

	results := data["results"].([]batchItemResult)
	require.Len(t, results, 2)
	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, "error", results[1].Status)
}

func TestBatchUnknownToolReportsErrorNotPanic(t *testing.T) {
	registry := shuttle.NewRegistry()
	batch := NewBatchTool(registry)

	result, err := batch.Execute(context.Background(), map[string]interface{}{
		"calls": []interface{}{
			map[string]interface{}{"tool": "does_not_exist"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	data := result.Data.(map[string]interface{})
	assert.Equal(t, 1, data["failed"])
}
