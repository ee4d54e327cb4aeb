// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAttachErrorDetectsPtrace(t *testing.T) {
	err := mapAttachError(errors.New("attach: operation not permitted: EPERM"))
	assert.Contains(t, err.Error(), "ptrace permission denied")
}

func TestMapAttachErrorDetectsLowercasePtrace(t *testing.T) {
	err := mapAttachError(errors.New("ptrace(ATTACH): operation not permitted"))
	assert.Contains(t, err.Error(), "ptrace permission denied")
}

func TestMapAttachErrorPassesThroughOtherErrors(t *testing.T) {
	original := errors.New("initialize: unexpected EOF")
	err := mapAttachError(original)
	assert.Equal(t, original, err)
}

func TestClassifyRaw(t *testing.T) {
	assert.Equal(t, KindRequest, classifyRaw([]byte(`{"type":"request"}`)))
	assert.Equal(t, KindResponse, classifyRaw([]byte(`{"type":"response"}`)))
	assert.Equal(t, KindEvent, classifyRaw([]byte(`{"type":"event"}`)))
	assert.Equal(t, KindOther, classifyRaw([]byte(`{}`)))
	assert.Equal(t, KindOther, classifyRaw([]byte(`not json`)))
}

func TestResolveAdapterPathPrefersExplicit(t *testing.T) {
	assert.Equal(t, "/opt/codelldb", resolveAdapterPath("/opt/codelldb"))
}

func TestResolveAdapterPathFallsBackToEnv(t *testing.T) {
	t.Setenv("CODELLDB_ADAPTER_PATH", "/env/codelldb")
	assert.Equal(t, "/env/codelldb", resolveAdapterPath(""))
}

func TestResolveAdapterPathDefaultsToBareName(t *testing.T) {
	t.Setenv("CODELLDB_ADAPTER_PATH", "")
	assert.Equal(t, "codelldb", resolveAdapterPath(""))
}
