// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package brp implements a JSON-RPC 2.0 client over HTTP for the Bevy
// Remote Protocol (BRP), used to inspect and mutate a running simulation:
// querying components, spawning primitives, uploading assets and clearing
// spawned entities.
package brp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// uploadCompressionThreshold is the payload size past which Upload
// gzip-compresses asset bytes before base64 encoding; small assets aren't
// worth the compression overhead.
const uploadCompressionThreshold = 4096

const (
	// DefaultEndpoint is used when BRP_ENDPOINT is unset.
	DefaultEndpoint = "http://127.0.0.1:15721"
	// DefaultTimeout is used when BRP_TIMEOUT_MS is unset or invalid.
	DefaultTimeout = 10 * time.Second
)

// Tag components used to identify entities this module spawned, so Clear
// can filter on them instead of despawning the whole world.
const (
	tagSpawned     = "AxiomSpawned"
	tagPrimitive   = "AxiomPrimitive"
	tagRemoteAsset = "AxiomRemoteAsset"
)

// ClearTarget selects which tagged entities Clear removes.
type ClearTarget string

// Allowed ClearTarget values.
const (
	ClearAll        ClearTarget = "All"
	ClearAssets     ClearTarget = "Assets"
	ClearPrimitives ClearTarget = "Primitives"
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      uint64          `json:"id"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client issues JSON-RPC 2.0 requests against a BRP endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
	sessionID  string
}

// NewClient creates a Client, resolving endpoint and timeout from env vars
// (BRP_ENDPOINT, BRP_TIMEOUT_MS) when not explicitly provided.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("BRP_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout == 0 {
		timeout = timeoutFromEnv()
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		sessionID:  uuid.NewString(),
	}
	c.nextID.Store(0)
	return c
}

// SessionID identifies this client instance in log fields; it has no wire
// meaning to the BRP server.
func (c *Client) SessionID() string {
	return c.sessionID
}

func timeoutFromEnv() time.Duration {
	raw := os.Getenv("BRP_TIMEOUT_MS")
	if raw == "" {
		return DefaultTimeout
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return DefaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// Raw sends method with params verbatim and returns the decoded result.
func (c *Client) Raw(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("brp: encoding params: %w", err)
		}
		rawParams = encoded
	}

	id := c.nextID.Add(1)
	req := request{JSONRPC: "2.0", Method: method, ID: id, Params: rawParams}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("brp: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("brp: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("brp: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("brp: endpoint returned HTTP %d", resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("brp: decoding response: %w", err)
	}
	if decoded.ID != id {
		return nil, fmt.Errorf("brp: response id %d does not match request id %d", decoded.ID, id)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("brp: rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	return decoded.Result, nil
}

// Ping verifies the endpoint is reachable via the discovery method every
// BRP server is required to expose.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Raw(ctx, "rpc.discover", nil)
	return err
}

// Query fetches entities carrying every component named, returning the raw
// world.query result.
func (c *Client) Query(ctx context.Context, components []string) (json.RawMessage, error) {
	return c.Raw(ctx, "world.query", map[string]interface{}{
		"data": map[string]interface{}{"components": components},
	})
}

// Transform is a spawn/upload position, rotation and scale.
type Transform struct {
	Translation [3]float64
	Rotation    [4]float64
	Scale       [3]float64
}

func defaultScale(scale [3]float64) [3]float64 {
	if scale == ([3]float64{}) {
		return [3]float64{1, 1, 1}
	}
	return scale
}

type spawnEntityResult struct {
	Entity uint64 `json:"entity"`
}

// Spawn creates a primitive entity and returns its new entity id as a
// decimal string - BRP responses vary between a bare scalar and
// {"entity": u64}, so the id is always surfaced as a string regardless of
// which shape the server used.
func (c *Client) Spawn(ctx context.Context, primitive string, transform Transform) (string, error) {
	scale := defaultScale(transform.Scale)
	result, err := c.Raw(ctx, "world.spawn_entity", map[string]interface{}{
		"components": map[string]interface{}{
			"AxiomPrimitive": map[string]interface{}{"primitive_type": primitive},
			"Transform": map[string]interface{}{
				"translation": transform.Translation,
				"rotation":    transform.Rotation,
				"scale":       scale,
			},
		},
	})
	if err != nil {
		return "", err
	}
	return decodeEntityID(result)
}

// Upload base64-encodes bytes and spawns an AxiomRemoteAsset entity
// referencing it, returning the new entity id.
func (c *Client) Upload(ctx context.Context, filename string, data []byte, subdir string, transform Transform) (string, error) {
	scale := defaultScale(transform.Scale)

	payload := data
	compressed := false
	if len(data) > uploadCompressionThreshold {
		gzipped, err := gzipBytes(data)
		if err == nil && len(gzipped) < len(data) {
			payload = gzipped
			compressed = true
		}
	}

	assetComponent := map[string]interface{}{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(payload),
	}
	if compressed {
		assetComponent["encoding"] = "gzip"
	}
	if subdir != "" {
		assetComponent["subdir"] = subdir
	}

	result, err := c.Raw(ctx, "world.spawn_entity", map[string]interface{}{
		"components": map[string]interface{}{
			"AxiomRemoteAsset": assetComponent,
			"Transform": map[string]interface{}{
				"translation": transform.Translation,
				"rotation":    transform.Rotation,
				"scale":       scale,
			},
		},
	})
	if err != nil {
		return "", err
	}
	return decodeEntityID(result)
}

// gzipBytes compresses data at the default compression level.
func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Clear despawns every entity tagged for target, using a filter-with-tag
// world.query followed by a world.despawn_entity per matching entity. It
// returns the count of entities removed.
func (c *Client) Clear(ctx context.Context, target ClearTarget) (int, error) {
	var tags []string
	switch target {
	case ClearAll:
		tags = []string{tagSpawned}
	case ClearAssets:
		tags = []string{tagRemoteAsset}
	case ClearPrimitives:
		tags = []string{tagPrimitive}
	default:
		return 0, fmt.Errorf("brp: unknown clear target %q", target)
	}

	var removed int
	for _, tag := range tags {
		entities, err := c.entitiesWithComponent(ctx, tag)
		if err != nil {
			return removed, err
		}
		for _, id := range entities {
			if _, err := c.Raw(ctx, "world.despawn_entity", map[string]interface{}{"entity": id}); err != nil {
				return removed, fmt.Errorf("brp: despawning entity %d: %w", id, err)
			}
			removed++
		}
	}
	return removed, nil
}

func (c *Client) entitiesWithComponent(ctx context.Context, component string) ([]uint64, error) {
	raw, err := c.Query(ctx, []string{component})
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Entity uint64 `json:"entity"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("brp: decoding query result: %w", err)
	}
	ids := make([]uint64, len(rows))
	for i, r := range rows {
		ids[i] = r.Entity
	}
	return ids, nil
}

func decodeEntityID(raw json.RawMessage) (string, error) {
	var scalar uint64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return strconv.FormatUint(scalar, 10), nil
	}

	var wrapped spawnEntityResult
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Entity != 0 {
		return strconv.FormatUint(wrapped.Entity, 10), nil
	}

	return "", fmt.Errorf("brp: could not decode entity id from result %s", string(raw))
}
