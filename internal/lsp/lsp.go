// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lsp implements a Language Server Protocol client: it spawns a
// language server, exchanges Content-Length framed JSON-RPC messages over
// its stdio, and exposes definition/references/diagnostics operations. The
// wire protocol is 0-based (lines and characters both start at 0); every
// operation here accepts and returns 1-based, human-facing line numbers,
// converting at the boundary.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/teradata-labs/bridge/internal/csync"
	"github.com/teradata-labs/bridge/internal/framing"
	"github.com/teradata-labs/bridge/internal/lspprotocol"
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  interface{}     `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client is a connected LSP session against one spawned language server.
type Client struct {
	command   string
	args      []string
	sessionID string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	writeM sync.Mutex
	nextID atomic.Int64

	pending *csync.Map[int64, chan rpcMessage]

	diagnostics *csync.Map[string, []lspprotocol.Diagnostic]

	capsMu       sync.Mutex
	capabilities json.RawMessage

	initMu      sync.Mutex
	initialized bool

	docsMu sync.Mutex
	docs   map[string]*openDoc // keyed by local filesystem path

	watcher *fsnotify.Watcher
}

// openDoc tracks an LSP-opened document so the workspace watcher can
// re-announce it when the file changes on disk outside of tool writes.
type openDoc struct {
	uri        string
	languageID string
	version    int
}

// NewClient creates a Client that will spawn command (with args) on
// Initialize.
func NewClient(command string, args ...string) *Client {
	return &Client{
		command:     command,
		args:        args,
		sessionID:   uuid.NewString(),
		pending:     csync.NewMap[int64, chan rpcMessage](),
		diagnostics: csync.NewMap[string, []lspprotocol.Diagnostic](),
		docs:        make(map[string]*openDoc),
	}
}

// SessionID identifies this client instance in log fields; it has no wire
// meaning to the language server.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Initialize spawns the language server and performs the
// initialize/initialized handshake against rootURI.
func (c *Client) Initialize(ctx context.Context, rootURI string) error {
	c.cmd = exec.Command(c.command, c.args...)

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("lsp: creating stdin pipe: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("lsp: creating stdout pipe: %w", err)
	}
	c.stdin = stdin

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("lsp: starting language server: %w", err)
	}

	go c.readLoop(bufio.NewReader(stdout))

	result, err := c.call(ctx, "initialize", map[string]interface{}{
		"processId": nil,
		"rootUri":   rootURI,
		"clientInfo": map[string]interface{}{
			"name": "bridge",
		},
		"workspaceFolders": []map[string]interface{}{
			{"uri": rootURI, "name": rootURI},
		},
		"capabilities": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"definition":         map[string]interface{}{},
				"references":         map[string]interface{}{},
				"publishDiagnostics": map[string]interface{}{},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lsp: initialize failed: %w", err)
	}

	c.capsMu.Lock()
	c.capabilities = result
	c.capsMu.Unlock()

	if err := c.notify("initialized", map[string]interface{}{}); err != nil {
		return fmt.Errorf("lsp: sending initialized notification: %w", err)
	}

	c.initMu.Lock()
	c.initialized = true
	c.initMu.Unlock()
	return nil
}

// IsConnected reports whether the initialize/initialized handshake has
// completed.
func (c *Client) IsConnected() bool {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.initialized
}

// GetStatus returns a short human-readable connection status.
func (c *Client) GetStatus() string {
	if c.IsConnected() {
		return "connected"
	}
	return "disconnected"
}

// Capabilities returns the server's raw initialize result, or nil if the
// handshake has not completed.
func (c *Client) Capabilities() json.RawMessage {
	c.capsMu.Lock()
	defer c.capsMu.Unlock()
	return c.capabilities
}

// Shutdown sends the shutdown/exit sequence and stops the language server.
func (c *Client) Shutdown(ctx context.Context) error {
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	_, _ = c.call(ctx, "shutdown", nil)
	_ = c.notify("exit", nil)
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	_ = c.cmd.Process.Kill()
	return c.cmd.Wait()
}

// DidOpen announces a document to the server. Safe to call redundantly
// before every operation against the same URI.
func (c *Client) DidOpen(uri, languageID, text string) error {
	if err := c.notify("textDocument/didOpen", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        uri,
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	}); err != nil {
		return err
	}

	if path := filePathFromURI(uri); path != "" {
		c.docsMu.Lock()
		c.docs[path] = &openDoc{uri: uri, languageID: languageID, version: 1}
		c.docsMu.Unlock()
		if c.watcher != nil {
			_ = c.watcher.Add(filepath.Dir(path))
		}
	}
	return nil
}

// WatchWorkspace starts an optional fsnotify watcher over directories
// containing already-opened documents; when one changes on disk outside of
// a tool write, its didOpen is re-sent so the server's view stays current.
// Safe to call once per Client; ctx cancellation stops the watch loop.
func (c *Client) WatchWorkspace(ctx context.Context) error {
	if c.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("lsp: creating file watcher: %w", err)
	}
	c.watcher = watcher

	c.docsMu.Lock()
	for path := range c.docs {
		_ = watcher.Add(filepath.Dir(path))
	}
	c.docsMu.Unlock()

	go c.watchLoop(ctx, watcher)
	return nil
}

func (c *Client) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			_ = watcher.Close()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c.reopenIfTracked(event.Name)
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (c *Client) reopenIfTracked(path string) {
	c.docsMu.Lock()
	doc, tracked := c.docs[path]
	c.docsMu.Unlock()
	if !tracked {
		return
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return
	}

	c.docsMu.Lock()
	doc.version++
	version := doc.version
	c.docsMu.Unlock()

	_ = c.notify("textDocument/didOpen", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        doc.uri,
			"languageId": doc.languageID,
			"version":    version,
			"text":       string(text),
		},
	})
}

// filePathFromURI converts a file:// URI to a local filesystem path,
// returning "" for any other scheme.
func filePathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Path
}

// Definition resolves the definition(s) of the symbol at the 1-based
// (line, column) position in uri.
func (c *Client) Definition(ctx context.Context, uri string, line, column int) ([]lspprotocol.Location, error) {
	result, err := c.call(ctx, "textDocument/definition", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": uri},
		"position":     wirePosition(line, column),
	})
	if err != nil {
		return nil, err
	}
	return decodeLocations(result)
}

// References resolves every reference to the symbol at the 1-based (line,
// column) position in uri. includeDeclaration is sent as the request's
// context.includeDeclaration; there is no default.
func (c *Client) References(ctx context.Context, uri string, line, column int, includeDeclaration bool) ([]lspprotocol.Location, error) {
	result, err := c.call(ctx, "textDocument/references", map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": uri},
		"position":     wirePosition(line, column),
		"context":      map[string]interface{}{"includeDeclaration": includeDeclaration},
	})
	if err != nil {
		return nil, err
	}
	return decodeLocations(result)
}

// DiagnosticSummary counts diagnostics by severity.
type DiagnosticSummary struct {
	Errors   int
	Warnings int
	Info     int
	Hints    int
}

// GetDiagnosticSummary tallies the most recently published diagnostics for
// uri by severity.
func (c *Client) GetDiagnosticSummary(uri string) DiagnosticSummary {
	diags, _ := c.diagnostics.Get(uri)

	var summary DiagnosticSummary
	for _, d := range diags {
		switch d.Severity {
		case lspprotocol.SeverityError:
			summary.Errors++
		case lspprotocol.SeverityWarning:
			summary.Warnings++
		case lspprotocol.SeverityInformation:
			summary.Info++
		case lspprotocol.SeverityHint:
			summary.Hints++
		}
	}
	return summary
}

// Diagnostics returns the most recently published diagnostics for uri,
// with 1-based line numbers.
func (c *Client) Diagnostics(uri string) []lspprotocol.Diagnostic {
	diags, _ := c.diagnostics.Get(uri)

	out := make([]lspprotocol.Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = humanDiagnostic(d)
	}
	return out
}

func wirePosition(humanLine, humanColumn int) map[string]interface{} {
	return map[string]interface{}{
		"line":      humanLine - 1,
		"character": humanColumn - 1,
	}
}

func humanPosition(p lspprotocol.Position) lspprotocol.Position {
	return lspprotocol.Position{Line: p.Line + 1, Character: p.Character + 1}
}

func humanRange(r lspprotocol.Range) lspprotocol.Range {
	return lspprotocol.Range{Start: humanPosition(r.Start), End: humanPosition(r.End)}
}

func humanDiagnostic(d lspprotocol.Diagnostic) lspprotocol.Diagnostic {
	d.Range = humanRange(d.Range)
	return d
}

func decodeLocations(raw json.RawMessage) ([]lspprotocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single lspprotocol.Location
	if err := json.Unmarshal(raw, &single); err == nil && single.URI != "" {
		single.Range = humanRange(single.Range)
		return []lspprotocol.Location{single}, nil
	}

	var list []lspprotocol.Location
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("lsp: decoding location response: %w", err)
	}
	for i := range list {
		list[i].Range = humanRange(list[i].Range)
	}
	return list, nil
}

// call sends a request and blocks for its response.
func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	wait := make(chan rpcMessage, 1)
	c.pending.Set(id, wait)

	msg := rpcMessage{JSONRPC: "2.0", ID: &id, Method: method, Params: params}
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.forgetPending(id)
		return nil, fmt.Errorf("lsp: encoding %s request: %w", method, err)
	}

	c.writeM.Lock()
	err = framing.WriteMessage(c.stdin, encoded)
	c.writeM.Unlock()
	if err != nil {
		c.forgetPending(id)
		return nil, fmt.Errorf("lsp: writing %s request: %w", method, err)
	}

	select {
	case resp := <-wait:
		if resp.Error != nil {
			return nil, fmt.Errorf("lsp: %s: %s", method, resp.Error.Message)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.forgetPending(id)
		return nil, ctx.Err()
	}
}

func (c *Client) notify(method string, params interface{}) error {
	msg := rpcMessage{JSONRPC: "2.0", Method: method, Params: params}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeM.Lock()
	defer c.writeM.Unlock()
	return framing.WriteMessage(c.stdin, encoded)
}

func (c *Client) forgetPending(id int64) {
	c.pending.Delete(id)
}

func (c *Client) readLoop(r *bufio.Reader) {
	for {
		body, err := framing.ReadMessage(r)
		if err != nil {
			return
		}
		var msg rpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			continue
		}

		if msg.ID != nil && msg.Method == "" {
			wait, ok := c.pending.Get(*msg.ID)
			if ok {
				c.pending.Delete(*msg.ID)
				wait <- msg
			}
			continue
		}

		if msg.Method == "textDocument/publishDiagnostics" {
			c.handleDiagnostics(msg.Params)
		}
	}
}

func (c *Client) handleDiagnostics(params interface{}) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return
	}
	var payload struct {
		URI         string                   `json:"uri"`
		Diagnostics []lspprotocol.Diagnostic `json:"diagnostics"`
	}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return
	}

	c.diagnostics.Set(payload.URI, payload.Diagnostics)
}
