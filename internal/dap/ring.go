// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import "sync"

// OutputLine is one line captured from a DAP "output" event, tagged with a
// monotonic sequence number so callers can tell ordering and freshness
// apart from the ring's eviction.
type OutputLine struct {
	Seq  uint64
	Text string
}

const outputRingCapacity = 1024

// outputRing is a fixed-capacity ring buffer of recent debuggee output.
// Once full, the oldest line is evicted to make room for the newest.
type outputRing struct {
	mu      sync.Mutex
	lines   []OutputLine
	nextSeq uint64
}

func newOutputRing() *outputRing {
	return &outputRing{lines: make([]OutputLine, 0, outputRingCapacity)}
}

func (r *outputRing) push(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	line := OutputLine{Seq: r.nextSeq, Text: text}
	if len(r.lines) >= outputRingCapacity {
		r.lines = append(r.lines[1:], line)
		return
	}
	r.lines = append(r.lines, line)
}

// Tail returns the last n lines (or fewer if the ring holds less),
// oldest first.
func (r *outputRing) Tail(n int) []OutputLine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > len(r.lines) {
		n = len(r.lines)
	}
	out := make([]OutputLine, n)
	copy(out, r.lines[len(r.lines)-n:])
	return out
}
