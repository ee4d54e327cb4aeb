// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package dap implements a Debug Adapter Protocol client: it spawns (or
// attaches through) a debug adapter process, speaks the Content-Length
// framed DAP wire protocol over its stdio, and exposes the handful of
// operations needed to drive a debuggee from a tool call - set
// breakpoints, step, inspect variables and memory, and a compound "debug
// snapshot" operation layered on top of those primitives.
//
// Only one session may be attached process-wide at a time; Attach on an
// already-attached package returns an error.
package dap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/teradata-labs/bridge/internal/framing"
)

// wireMessage is the superset of fields used across DAP request, response
// and event messages; unused fields are simply omitted on encode.
type wireMessage struct {
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	Command    string          `json:"command,omitempty"`
	Arguments  interface{}     `json:"arguments,omitempty"`
	RequestSeq uint64          `json:"request_seq,omitempty"`
	Success    bool            `json:"success,omitempty"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Event      string          `json:"event,omitempty"`
}

// StopSummary projects a DAP "stopped" event into the shape operations
// return to callers.
type StopSummary struct {
	Reason            string `json:"reason"`
	Description       string `json:"description,omitempty"`
	Text              string `json:"text,omitempty"`
	ThreadID          int    `json:"thread_id"`
	AllThreadsStopped bool   `json:"all_threads_stopped"`
	HitBreakpointIDs  []int  `json:"hit_breakpoint_ids,omitempty"`
}

type pendingRequest struct {
	ch chan wireMessage
}

// Session is one attached DAP connection.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writeM sync.Mutex

	seq atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*pendingRequest

	initializedMu sync.Mutex
	initializedCh chan struct{}
	initialized   bool

	stoppedGen atomic.Uint64
	lastStop   atomic.Pointer[StopSummary]

	output *outputRing
	audit  *auditLog

	readerDone chan struct{}
	closeOnce  sync.Once
	pid        int
}

var (
	globalMu      sync.Mutex
	globalSession *Session
)

const (
	initializeTimeout        = 5 * time.Second
	initializedEventTimeout  = 5 * time.Second
	configurationDoneTimeout = 5 * time.Second
	attachResponseTimeout    = 10 * time.Second
)

// AttachOptions configures Attach.
type AttachOptions struct {
	// PID of the process to attach to.
	PID int
	// Program is the path to the debuggee's binary, if the adapter needs it.
	Program string
	// AdapterPath is the path to the debug adapter executable. Falls back
	// to CODELLDB_ADAPTER_PATH, then "codelldb" on PATH.
	AdapterPath string
}

func resolveAdapterPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if fromEnv := os.Getenv("CODELLDB_ADAPTER_PATH"); fromEnv != "" {
		return fromEnv
	}
	return "codelldb"
}

// Attach spawns the debug adapter and drives the full attach handshake:
// probe the target still exists, initialize, send attach (without
// awaiting it yet), wait for the "initialized" event, send
// configurationDone, then finally await the pending attach response. Any
// failure along the way tears the session down completely.
func Attach(ctx context.Context, opts AttachOptions) (*Session, error) {
	globalMu.Lock()
	if globalSession != nil {
		globalMu.Unlock()
		return nil, fmt.Errorf("dap: a session is already attached")
	}
	globalMu.Unlock()

	if opts.PID <= 0 {
		return nil, fmt.Errorf("dap: pid is required")
	}
	if err := probeProcessExists(opts.PID); err != nil {
		return nil, fmt.Errorf("dap: target process %d is not running: %w", opts.PID, err)
	}

	adapterPath := resolveAdapterPath(opts.AdapterPath)
	cmd := exec.CommandContext(context.Background(), adapterPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("dap: creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("dap: creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, mapAttachError(err)
	}

	audit, err := openAuditLog(opts.PID)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	s := &Session{
		cmd:           cmd,
		stdin:         stdin,
		pending:       make(map[uint64]*pendingRequest),
		initializedCh: make(chan struct{}),
		output:        newOutputRing(),
		audit:         audit,
		readerDone:    make(chan struct{}),
		pid:           opts.PID,
	}

	go s.readLoop(bufio.NewReader(stdout))

	if err := s.runAttachHandshake(ctx, opts); err != nil {
		s.teardown()
		return nil, err
	}

	globalMu.Lock()
	globalSession = s
	globalMu.Unlock()
	return s, nil
}

func (s *Session) runAttachHandshake(ctx context.Context, opts AttachOptions) error {
	initCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
	defer cancel()
	if _, err := s.sendRequest(initCtx, "initialize", map[string]interface{}{
		"clientID":                     "bridge",
		"adapterID":                    "codelldb",
		"linesStartAt1":                true,
		"columnsStartAt1":              true,
		"supportsRunInTerminalRequest": false,
	}); err != nil {
		return mapAttachError(fmt.Errorf("initialize: %w", err))
	}

	attachArgs := map[string]interface{}{"pid": opts.PID}
	if opts.Program != "" {
		attachArgs["program"] = opts.Program
	}
	attachSeq, attachWait, err := s.sendRequestNoWait("attach", attachArgs)
	if err != nil {
		return mapAttachError(fmt.Errorf("sending attach: %w", err))
	}

	select {
	case <-s.initializedCh:
	case <-time.After(initializedEventTimeout):
		s.forgetPending(attachSeq)
		return fmt.Errorf("dap: timed out waiting for initialized event")
	case <-ctx.Done():
		s.forgetPending(attachSeq)
		return ctx.Err()
	}

	cfgCtx, cfgCancel := context.WithTimeout(ctx, configurationDoneTimeout)
	defer cfgCancel()
	if _, err := s.sendRequest(cfgCtx, "configurationDone", nil); err != nil {
		s.forgetPending(attachSeq)
		return mapAttachError(fmt.Errorf("configurationDone: %w", err))
	}

	select {
	case resp := <-attachWait:
		if !resp.Success {
			return mapAttachError(fmt.Errorf("attach: %s", resp.Message))
		}
	case <-time.After(attachResponseTimeout):
		s.forgetPending(attachSeq)
		return fmt.Errorf("dap: timed out waiting for attach response")
	case <-ctx.Done():
		s.forgetPending(attachSeq)
		return ctx.Err()
	}

	return nil
}

func mapAttachError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "EPERM") || strings.Contains(strings.ToLower(msg), "ptrace") {
		return fmt.Errorf("ptrace permission denied: %w", err)
	}
	return err
}

func probeProcessExists(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	// On Unix, FindProcess always succeeds; signal 0 is the conventional
	// existence probe that performs no action if the process is alive.
	return proc.Signal(syscall.Signal(0))
}

// Detach sends the "disconnect" request and unconditionally tears the session
// down regardless of whether the request succeeds.
func (s *Session) Detach(ctx context.Context) error {
	defer s.teardown()
	_, err := s.sendRequest(ctx, "disconnect", map[string]interface{}{"terminateDebuggee": false})
	return err
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		globalMu.Lock()
		if globalSession == s {
			globalSession = nil
		}
		globalMu.Unlock()

		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
		_ = s.audit.Close()
	})
}

// sendRequest writes a request frame and blocks until its response arrives
// or ctx is done. On timeout the pending entry is removed first so a late
// response cannot be delivered to a channel nobody reads.
func (s *Session) sendRequest(ctx context.Context, command string, arguments interface{}) (wireMessage, error) {
	seq, wait, err := s.sendRequestNoWait(command, arguments)
	if err != nil {
		return wireMessage{}, err
	}
	select {
	case resp := <-wait:
		if !resp.Success {
			return resp, fmt.Errorf("dap: %s failed: %s", command, resp.Message)
		}
		return resp, nil
	case <-ctx.Done():
		s.forgetPending(seq)
		return wireMessage{}, ctx.Err()
	}
}

func (s *Session) sendRequestNoWait(command string, arguments interface{}) (uint64, chan wireMessage, error) {
	seq := s.seq.Add(1)
	msg := wireMessage{Seq: seq, Type: "request", Command: command, Arguments: arguments}

	wait := make(chan wireMessage, 1)
	s.mu.Lock()
	s.pending[seq] = &pendingRequest{ch: wait}
	s.mu.Unlock()

	encoded, err := json.Marshal(msg)
	if err != nil {
		s.forgetPending(seq)
		return 0, nil, fmt.Errorf("dap: encoding %s request: %w", command, err)
	}

	s.audit.record(DirectionOutbound, KindRequest, encoded)

	s.writeM.Lock()
	err = framing.WriteMessage(s.stdin, encoded)
	s.writeM.Unlock()
	if err != nil {
		s.forgetPending(seq)
		return 0, nil, fmt.Errorf("dap: writing %s request: %w", command, err)
	}

	return seq, wait, nil
}

func (s *Session) forgetPending(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, seq)
}

func (s *Session) readLoop(r *bufio.Reader) {
	defer close(s.readerDone)
	for {
		body, err := framing.ReadMessage(r)
		if err != nil {
			return
		}
		s.audit.record(DirectionInbound, classifyRaw(body), body)

		var msg wireMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			continue
		}
		s.dispatch(msg)
	}
}

func classifyRaw(body []byte) MessageKind {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return KindOther
	}
	switch probe.Type {
	case "request":
		return KindRequest
	case "response":
		return KindResponse
	case "event":
		return KindEvent
	default:
		return KindOther
	}
}

func (s *Session) dispatch(msg wireMessage) {
	switch msg.Type {
	case "response":
		s.mu.Lock()
		pending, ok := s.pending[msg.RequestSeq]
		if ok {
			delete(s.pending, msg.RequestSeq)
		}
		s.mu.Unlock()
		if ok {
			pending.ch <- msg
		}
	case "event":
		s.dispatchEvent(msg)
	}
}

func (s *Session) dispatchEvent(msg wireMessage) {
	switch msg.Event {
	case "initialized":
		s.initializedMu.Lock()
		if !s.initialized {
			s.initialized = true
			close(s.initializedCh)
		}
		s.initializedMu.Unlock()
	case "stopped":
		var body struct {
			Reason            string `json:"reason"`
			Description       string `json:"description"`
			Text              string `json:"text"`
			ThreadID          int    `json:"threadId"`
			AllThreadsStopped bool   `json:"allThreadsStopped"`
			HitBreakpointIDs  []int  `json:"hitBreakpointIds"`
		}
		if err := json.Unmarshal(msg.Body, &body); err == nil {
			summary := &StopSummary{
				Reason:            body.Reason,
				Description:       body.Description,
				Text:              body.Text,
				ThreadID:          body.ThreadID,
				AllThreadsStopped: body.AllThreadsStopped,
				HitBreakpointIDs:  body.HitBreakpointIDs,
			}
			s.lastStop.Store(summary)
		}
		s.stoppedGen.Add(1)
	case "output":
		var body struct {
			Output string `json:"output"`
		}
		if err := json.Unmarshal(msg.Body, &body); err == nil {
			s.output.push(body.Output)
		}
	}
}

// LastStop returns the most recent stopped-event summary, or nil if the
// debuggee has never stopped.
func (s *Session) LastStop() *StopSummary {
	return s.lastStop.Load()
}

// Generation returns the current stopped-event generation counter, used to
// distinguish a fresh stop from one the caller already observed.
func (s *Session) Generation() uint64 {
	return s.stoppedGen.Load()
}
