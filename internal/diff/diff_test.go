// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedMarksInsertionsAndDeletions(t *testing.T) {
	out := Unified("line one\nline two\n", "line one\nline three\n")
	assert.True(t, strings.Contains(out, "-line two"))
	assert.True(t, strings.Contains(out, "+line three"))
}

func TestUnifiedEmptyWhenEqual(t *testing.T) {
	assert.Empty(t, Unified("same", "same"))
}

func TestLinesClassifiesEachChange(t *testing.T) {
	lines := Lines("a\nb\n", "a\nc\n")
	var sawInsert, sawDelete bool
	for _, l := range lines {
		if l.Type == DiffInsert {
			sawInsert = true
		}
		if l.Type == DiffDelete {
			sawDelete = true
		}
	}
	assert.True(t, sawInsert)
	assert.True(t, sawDelete)
}

func TestGenerateDiffReturnsEmptyForIdenticalContent(t *testing.T) {
	out, _, _ := GenerateDiff("same", "same", "file.go")
	assert.Empty(t, out)
}

func TestGenerateDiffReturnsUnifiedDiffForChangedContent(t *testing.T) {
	out, _, _ := GenerateDiff("a\n", "b\n", "file.go")
	assert.Contains(t, out, "-a")
	assert.Contains(t, out, "+b")
}
