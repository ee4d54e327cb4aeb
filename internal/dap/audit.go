// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Direction identifies which side originated an audited message.
type Direction string

// Allowed Direction values.
const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionInternal Direction = "internal"
)

// MessageKind classifies an audited DAP message.
type MessageKind string

// Allowed MessageKind values.
const (
	KindRequest  MessageKind = "request"
	KindResponse MessageKind = "response"
	KindEvent    MessageKind = "event"
	KindOther    MessageKind = "other"
)

type auditRecord struct {
	TsMs      int64           `json:"ts_ms"`
	SessionID string          `json:"session_id"`
	Direction Direction       `json:"direction"`
	Kind      MessageKind     `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
}

// auditLog is an append-only, newline-delimited JSON log of every message
// exchanged with the debug adapter, flushed after every record so a crash
// mid-session still leaves a readable trail. sessionID tags every record so
// a log aggregator can correlate envelopes back to the attach that produced
// them even after the file has been rotated or concatenated with others.
type auditLog struct {
	mu        sync.Mutex
	file      *os.File
	sessionID string
	index     *auditIndex
}

func openAuditLog(pid int) (*auditLog, error) {
	dir := filepath.Join(".sisyphus", "evidence")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("dap: creating evidence directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("dap_session_%d_%d.jsonl", pid, time.Now().UnixMilli()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("dap: opening audit log: %w", err)
	}

	// The SQLite index is a queryable convenience on top of the JSONL file;
	// if it can't be opened, auditing still works via the JSONL log alone.
	index, err := openAuditIndex(dir)
	if err != nil {
		index = nil
	}

	return &auditLog{file: f, sessionID: uuid.NewString(), index: index}, nil
}

func (a *auditLog) record(direction Direction, kind MessageKind, payload []byte) {
	if a == nil || a.file == nil {
		return
	}
	rec := auditRecord{
		TsMs:      time.Now().UnixMilli(),
		SessionID: a.sessionID,
		Direction: direction,
		Kind:      kind,
		Payload:   json.RawMessage(payload),
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	encoded = append(encoded, '\n')
	if _, err := a.file.Write(encoded); err != nil {
		return
	}
	_ = a.file.Sync()

	a.index.insert(rec)
}

func (a *auditLog) Close() error {
	if a == nil {
		return nil
	}
	if a.index != nil {
		_ = a.index.Close()
	}
	if a.file == nil {
		return nil
	}
	return a.file.Close()
}
