// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate produces the semantic content of a docstring (summary,
// parameter and return descriptions) for one located function.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
	"github.com/AleutianAI/docnsrt/services/llm"
)

// Generator kinds accepted by New.
const (
	KindPlaceholder = "placeholder"
	KindLLM         = "llm"
)

var (
	// ErrMalformedResponse indicates the backend reply held no usable JSON.
	ErrMalformedResponse = errors.New("malformed generator response")

	// ErrUnknownKind indicates a generator kind New does not recognise.
	ErrUnknownKind = errors.New("unknown generator kind")
)

// Generator produces docstring content for a function.
//
// Description:
//
//	Failures are function scoped: the caller records the error and skips
//	the function. Generate is never retried.
//
// Thread Safety: Implementations must be safe for concurrent use; the
// pipeline calls Generate from several goroutines.
type Generator interface {
	// Name returns the generator kind, used as a metric label.
	Name() string

	// Generate returns the content for fc.
	Generate(ctx context.Context, fc model.FunctionContext) (model.TemplateValues, error)

	// Close releases caches and connections.
	Close() error
}

// Config selects and tunes a generator.
type Config struct {
	Kind string

	// NoSummary leaves the placeholder summary empty.
	NoSummary bool

	// LLM settings. Ignored by the placeholder generator.
	Provider          string
	Model             string
	BaseURL           string
	APIKeyEnv         string
	Temperature       *float32
	MaxTokens         *int
	RequestsPerMinute int

	// CacheDir holds the response cache. Empty keeps it in memory.
	CacheDir string

	// PromptFile overrides the embedded prompt template.
	PromptFile string
}

// Deps are the collaborators a generator may use.
type Deps struct {
	// Client overrides the backend built from Config. Used by tests and by
	// callers that share one client across runs.
	Client llm.Client
	Logger *slog.Logger
}

// New builds the generator for cfg.Kind. An empty kind is a placeholder
// generator.
func New(cfg Config, deps Deps) (Generator, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	switch strings.ToLower(cfg.Kind) {
	case "", KindPlaceholder:
		return &PlaceholderGenerator{NoSummary: cfg.NoSummary}, nil
	case KindLLM:
		return NewLLMGenerator(cfg, deps)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
