// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package llmstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/bridge/internal/sse"
)

func TestStreamCollectsTextChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\ndata: [DONE]\n"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})

	var text string
	err := client.Stream(context.Background(), "test-model", []Message{{Role: "user", Content: "hello"}}, nil, func(c sse.Chunk) {
		if c.Kind == sse.KindText {
			text += c.Text
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestStreamFailsImmediatelyOn400(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	err := client.Stream(context.Background(), "m", nil, nil, func(c sse.Chunk) {})
	assert.ErrorContains(t, err, "400")
}

func TestStreamRetriesOn500ThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	err := client.Stream(context.Background(), "m", nil, nil, func(c sse.Chunk) {})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
