// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client on the OpenAI chat completions API.
//
// Description:
//
//	Requests go through go-openai. The Authorization header is set by a
//	transport that opens the sealed key per request, so the client config
//	never holds the key.
//
// Thread Safety: Safe for concurrent use.
type OpenAIClient struct {
	client *openai.Client
	model  string
	system string
	logger *slog.Logger
}

// NewOpenAIClient creates an OpenAIClient. An empty cfg.Model defaults to
// gpt-4o-mini.
func NewOpenAIClient(cfg Config, key *SealedKey) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
		cfg.Logger.Warn("no model configured, defaulting", slog.String("model", model))
	}

	oc := openai.DefaultConfig("")
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{
		Timeout:   120 * time.Second,
		Transport: &sealedAuthTransport{key: key, next: http.DefaultTransport},
	}

	cfg.Logger.Debug("initialising openai client", slog.String("model", model))
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		system: cfg.SystemPrompt,
		logger: cfg.Logger,
	}
}

// Model implements Client.
func (o *OpenAIClient) Model() string { return o.model }

// Generate implements Client.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("openai: %w", ctx.Err())
		}
		return "", fmt.Errorf("openai: chat completion: %s", Redact(err.Error()))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	o.logger.Debug("openai response",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// sealedAuthTransport adds the bearer token from a SealedKey.
type sealedAuthTransport struct {
	key  *SealedKey
	next http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *sealedAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	err := t.key.Use(func(secret []byte) error {
		r.Header.Set("Authorization", "Bearer "+string(secret))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.next.RoundTrip(r)
}
