// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputRingEvictsOldest(t *testing.T) {
	r := newOutputRing()
	for i := 0; i < outputRingCapacity+10; i++ {
		r.push(fmt.Sprintf("line-%d", i))
	}

	tail := r.Tail(5)
	assert.Len(t, tail, 5)
	assert.Equal(t, "line-1033", tail[len(tail)-1].Text)
}

func TestOutputRingTailOrdering(t *testing.T) {
	r := newOutputRing()
	r.push("a")
	r.push("b")
	r.push("c")

	tail := r.Tail(2)
	assert.Equal(t, []string{"b", "c"}, []string{tail[0].Text, tail[1].Text})
}

func TestOutputRingSeqIsMonotonic(t *testing.T) {
	r := newOutputRing()
	r.push("a")
	r.push("b")
	tail := r.Tail(2)
	assert.Less(t, tail[0].Seq, tail[1].Seq)
}
