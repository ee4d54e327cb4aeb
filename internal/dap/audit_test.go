// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogAppendsNDJSONRecords(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	log, err := openAuditLog(12345)
	require.NoError(t, err)
	defer log.Close()

	log.record(DirectionOutbound, KindRequest, []byte(`{"type":"request","command":"initialize"}`))
	log.record(DirectionInbound, KindResponse, []byte(`{"type":"response"}`))

	matches, err := filepath.Glob(filepath.Join(dir, ".sisyphus", "evidence", "dap_session_12345_*.jsonl"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var first auditRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, DirectionOutbound, first.Direction)
	assert.Equal(t, KindRequest, first.Kind)
	assert.True(t, strings.Contains(string(first.Payload), "initialize"))
}

func TestAuditLogIndexesRecordsBySession(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	log, err := openAuditLog(777)
	require.NoError(t, err)
	defer log.Close()

	log.record(DirectionOutbound, KindRequest, []byte(`{"command":"initialize"}`))
	log.record(DirectionInbound, KindEvent, []byte(`{"event":"stopped"}`))

	require.NotNil(t, log.index)
	records, err := log.index.recordsBySession(log.sessionID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, KindRequest, records[0].Kind)
	assert.Equal(t, KindEvent, records[1].Kind)
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() {
		_ = os.Chdir(original)
	}
}
