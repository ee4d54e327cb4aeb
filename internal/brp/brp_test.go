// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package brp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingUsesRPCDiscover(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMethod = req.Method
		_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{}`)})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "rpc.discover", gotMethod)
}

func TestSpawnDecodesScalarEntityID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "world.spawn_entity", req.Method)
		_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`42`)})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	id, err := client.Spawn(context.Background(), "cube", Transform{})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestSpawnDecodesWrappedEntityID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"entity":7}`)})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	id, err := client.Spawn(context.Background(), "sphere", Transform{})
	require.NoError(t, err)
	assert.Equal(t, "7", id)
}

func TestClearDespawnsQueriedEntities(t *testing.T) {
	var despawned []uint64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "world.query":
			_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`[{"entity":1},{"entity":2}]`)})
		case "world.despawn_entity":
			var params struct {
				Entity uint64 `json:"entity"`
			}
			require.NoError(t, json.Unmarshal(req.Params, &params))
			despawned = append(despawned, params.Entity)
			_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`null`)})
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	removed, err := client.Clear(context.Background(), ClearPrimitives)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []uint64{1, 2}, despawned)
}

func TestRequestIDMismatchIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(response{JSONRPC: "2.0", ID: 999, Result: json.RawMessage(`{}`)})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	_, err := client.Raw(context.Background(), "rpc.discover", nil)
	assert.ErrorContains(t, err, "does not match")
}
