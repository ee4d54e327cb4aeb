// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const safePointFrameMarker = "axiom_debug_safe_point"

// snapshotLengthCap bounds how many snapshot bytes DebugSnapshot will read,
// independent of what the debuggee claims its length is.
const snapshotLengthCap = 4096

var hexAddressPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

// DebugSnapshotResult is the decoded probe-state snapshot, or Supported
// false if the debuggee is not currently stopped at a recognized safe
// point.
type DebugSnapshotResult struct {
	Supported    bool   `json:"supported"`
	FrameCounter uint64 `json:"frame_counter,omitempty"`
	SnapshotLen  int    `json:"snapshot_len,omitempty"`
	Snapshot     string `json:"snapshot,omitempty"`
	Raw          []byte `json:"-"`
}

// DebugSnapshot reads the AXIOM_DEBUG_PROBE_STATE structure out of the
// debuggee's memory: an 8-byte little-endian frame counter, followed by an
// 8-byte little-endian snapshot length (clamped to 4096), followed by that
// many bytes of UTF-8 JSON. It only applies when the debuggee is currently
// stopped with the top frame inside a function named with the
// "axiom_debug_safe_point" marker.
func (s *Session) DebugSnapshot(ctx context.Context, threadID int) (*DebugSnapshotResult, error) {
	stop := s.LastStop()
	if stop == nil {
		return &DebugSnapshotResult{Supported: false}, nil
	}

	frames, err := s.StackTrace(ctx, threadID, 0, 3)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 || !strings.Contains(frames[0].Name, safePointFrameMarker) {
		return &DebugSnapshotResult{Supported: false}, nil
	}
	frameID := frames[0].ID

	address, err := s.resolveProbeAddress(ctx, frameID)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return &DebugSnapshotResult{Supported: false}, nil
	}

	header, err := s.ReadMemory(ctx, address, 0, 16)
	if err != nil {
		return nil, fmt.Errorf("dap: reading probe header: %w", err)
	}
	if len(header.Data) < 16 {
		return &DebugSnapshotResult{Supported: false}, nil
	}

	frameCounter := binary.LittleEndian.Uint64(header.Data[0:8])
	snapshotLen := int(binary.LittleEndian.Uint64(header.Data[8:16]))
	if snapshotLen > snapshotLengthCap {
		snapshotLen = snapshotLengthCap
	}

	body, err := s.ReadMemory(ctx, address, 16, snapshotLen)
	if err != nil {
		return nil, fmt.Errorf("dap: reading probe snapshot body: %w", err)
	}

	trimmed := strings.TrimRight(string(body.Data), "\x00")
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("dap: probe snapshot is not valid JSON")
	}

	return &DebugSnapshotResult{
		Supported:    true,
		FrameCounter: frameCounter,
		SnapshotLen:  snapshotLen,
		Snapshot:     trimmed,
		Raw:          body.Data,
	}, nil
}

// resolveProbeAddress first tries evaluating &AXIOM_DEBUG_PROBE_STATE in
// the watch context and uses the response's memoryReference if present.
// If that yields nothing, it falls back to a repl "p/x" evaluation and
// extracts a hex address from the most recent debuggee output.
func (s *Session) resolveProbeAddress(ctx context.Context, frameID int) (string, error) {
	watchResult, err := s.Evaluate(ctx, "&AXIOM_DEBUG_PROBE_STATE", frameID, "watch")
	if err == nil && watchResult.MemoryReference != "" {
		return watchResult.MemoryReference, nil
	}

	if _, err := s.Evaluate(ctx, "p/x &AXIOM_DEBUG_PROBE_STATE", frameID, "repl"); err != nil {
		return "", nil
	}

	for _, line := range s.RecentOutput(32) {
		if match := hexAddressPattern.FindString(line.Text); match != "" {
			return match, nil
		}
	}
	return "", nil
}
