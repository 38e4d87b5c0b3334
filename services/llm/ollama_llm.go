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

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.1"

// OllamaClient implements Client on a local Ollama server through
// langchaingo.
//
// Thread Safety: Safe for concurrent use.
type OllamaClient struct {
	llm    *ollama.LLM
	model  string
	logger *slog.Logger
}

// NewOllamaClient creates an OllamaClient. An empty cfg.BaseURL uses the
// langchaingo default (OLLAMA_HOST or http://localhost:11434).
func NewOllamaClient(cfg Config) (*OllamaClient, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithSystemPrompt(cfg.SystemPrompt),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	l, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return &OllamaClient{llm: l, model: model, logger: cfg.Logger}, nil
}

// Model implements Client.
func (o *OllamaClient) Model() string { return o.model }

// Generate implements Client.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	var opts []llms.CallOption
	if params.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	o.logger.Debug("ollama response", slog.String("model", o.model), slog.Int("len", len(out)))
	return out, nil
}
