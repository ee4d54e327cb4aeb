// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package llmstream implements a single-provider chat-completions
// streaming client: POST a chat request with stream:true, decode the
// Server-Sent Events response body through internal/sse, and retry
// transient failures with exponential backoff. It supports a single
// provider - one endpoint, one retry policy, wired directly to
// internal/sse's chunk stream.
package llmstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/teradata-labs/bridge/internal/sse"
)

const (
	// DefaultBaseURL is used when GEMINI_BASE_URL is unset.
	DefaultBaseURL = "http://127.0.0.1:8045/v1"

	chatCompletionsPath = "/chat/completions"

	maxRetries     = 3
	baseRetryDelay = 2 * time.Second
	requestTimeout = 120 * time.Second

	// tokenEncoding names the tiktoken-go encoding used to estimate prompt
	// size; cl100k_base is the closest public stand-in absent a
	// provider-specific tokenizer.
	tokenEncoding = "cl100k_base"
)

// Message is a single chat message in the request body.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content,omitempty"`
	ToolCalls []any  `json:"tool_calls,omitempty"`
}

// ToolSpec is a tool definition forwarded to the provider verbatim.
type ToolSpec = json.RawMessage

type chatRequest struct {
	Model    string     `json:"model"`
	Messages []Message  `json:"messages"`
	Tools    []ToolSpec `json:"tools,omitempty"`
	Stream   bool       `json:"stream"`
}

// Client is a streaming chat-completions client bound to a single base URL
// and API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	tokenizer  *tiktoken.Tiktoken
}

// Config configures a Client. BaseURL defaults to GEMINI_BASE_URL, falling
// back to DefaultBaseURL.
type Config struct {
	BaseURL string
	APIKey  string
	Logger  *zap.Logger
}

// NewClient creates a streaming client from Config.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GEMINI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokenizer, _ := tiktoken.GetEncoding(tokenEncoding)
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     cfg.Logger,
		tokenizer:  tokenizer,
	}
}

// countTokens estimates the token count of messages using the client's
// tiktoken encoding, returning 0 if the encoding failed to load.
func (c *Client) countTokens(messages []Message) int {
	if c.tokenizer == nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(c.tokenizer.Encode(m.Content, nil, nil))
	}
	return total
}

func (c *Client) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return zap.L()
}

// ChunkHandler is invoked once per decoded SSE chunk in arrival order.
type ChunkHandler func(sse.Chunk)

// Stream issues a streaming chat-completions request and feeds decoded
// chunks to onChunk as they arrive. It retries on network errors, HTTP 429
// and any 5xx, up to maxRetries times with exponentially doubling backoff
// starting at baseRetryDelay. Any other non-2xx status fails immediately
// with the response body as the error text.
func (c *Client) Stream(ctx context.Context, model string, messages []Message, tools []ToolSpec, onChunk ChunkHandler) error {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Tools: tools, Stream: true})
	if err != nil {
		return fmt.Errorf("llmstream: encoding request: %w", err)
	}

	c.log().Debug("llmstream dispatching request",
		zap.String("model", model),
		zap.Int("message_count", len(messages)),
		zap.Int("prompt_tokens_estimate", c.countTokens(messages)),
	)

	var lastErr error
	delay := baseRetryDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.log().Warn("llmstream retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		retryable, err := c.attempt(ctx, body, onChunk)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("llmstream: exhausted %d retries: %w", maxRetries, lastErr)
}

// attempt performs one HTTP round trip. The bool return reports whether
// the caller should retry on error.
func (c *Client) attempt(ctx context.Context, body []byte, onChunk ChunkHandler) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("llmstream: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("llmstream: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("llmstream: provider returned %d: %s", resp.StatusCode, string(text))
	}

	decoder := sse.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, chunk := range decoder.Feed(buf[:n]) {
				onChunk(chunk)
			}
		}
		if readErr == io.EOF {
			return false, nil
		}
		if readErr != nil {
			return true, fmt.Errorf("llmstream: reading stream: %w", readErr)
		}
	}
}
