// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package locks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseAllowsReacquire(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "file.txt")
	h, err := Acquire(path)
	require.NoError(t, err)
	h.Release()

	h2, err := Acquire(path)
	require.NoError(t, err)
	h2.Release()
}

func TestAcquireBlocksConcurrentHolder(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "file.txt")
	h1, err := Acquire(path)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		h2, err := Acquire(path)
		require.NoError(t, err)
		close(acquired)
		h2.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire returned while first holder still held the lock")
	case <-time.After(150 * time.Millisecond):
	}

	h1.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never completed after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "file.txt")
	h, err := Acquire(path)
	require.NoError(t, err)
	h.Release()
	assert.NotPanics(t, h.Release)
}

func TestPoisonedRegistryRejectsAcquire(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Poison()
	_, err := Acquire(filepath.Join(t.TempDir(), "file.txt"))
	assert.ErrorContains(t, err, "poisoned")
}

func TestCanonicalizeRelativePath(t *testing.T) {
	got, err := Canonicalize("relative/path.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
