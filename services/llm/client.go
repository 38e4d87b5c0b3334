// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the text-generation backends used by the LLM
// docstring generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// DefaultSystemPrompt is sent as the system message by chat backends.
const DefaultSystemPrompt = "You are a senior engineer writing concise, accurate API documentation. Reply with JSON only."

// ErrUnknownProvider indicates a provider name New does not recognise.
var ErrUnknownProvider = errors.New("unknown llm provider")

// ErrEmptyResponse indicates the backend returned no content.
var ErrEmptyResponse = errors.New("llm returned no content")

// GenerationParams tunes a single request. Nil fields use backend defaults.
type GenerationParams struct {
	Temperature *float32
	MaxTokens   *int
	Stop        []string
}

// Client generates text from a prompt.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Client interface {
	// Generate sends prompt and returns the completion text.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// Model returns the model name, used in cache keys and metrics.
	Model() string
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string

	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string

	// APIKeyEnv names the environment variable holding the API key.
	// Ignored by providers that need no key.
	APIKeyEnv string

	SystemPrompt string
	Logger       *slog.Logger
}

// New builds the Client for cfg.Provider.
//
// Description:
//
//	The OpenAI backend reads its key from cfg.APIKeyEnv and seals it in a
//	memguard enclave; the environment value is never kept in a Go string.
//	The Ollama backend talks to a local server and needs no key.
//
// Outputs:
//   - Client: The configured backend.
//   - error: ErrUnknownProvider, ErrSecretNotFound, or a construction error.
func New(cfg Config) (Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		env := cfg.APIKeyEnv
		if env == "" {
			env = "OPENAI_API_KEY"
		}
		key, err := SealEnv(env)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		return NewOpenAIClient(cfg, key), nil
	case ProviderOllama:
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s, %s)", ErrUnknownProvider, cfg.Provider, ProviderOpenAI, ProviderOllama)
	}
}
