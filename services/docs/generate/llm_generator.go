// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/docnsrt/services/docs/model"
	"github.com/AleutianAI/docnsrt/services/llm"
)

// LLMGenerator asks a language model for the docstring content.
//
// Description:
//
//	Builds the prompt from the function context, serves it from the
//	response cache when possible, otherwise waits on the rate limiter and
//	calls the backend. The reply is parsed with ParseValues; only replies
//	that parse are cached.
//
// Thread Safety: Safe for concurrent use.
type LLMGenerator struct {
	client  llm.Client
	prompt  *Prompt
	cache   *Cache
	limiter *rate.Limiter
	params  llm.GenerationParams
	logger  *slog.Logger
}

// NewLLMGenerator builds an LLMGenerator. deps.Client, when set, replaces
// the backend described by cfg.
func NewLLMGenerator(cfg Config, deps Deps) (*LLMGenerator, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	client := deps.Client
	if client == nil {
		var err error
		client, err = llm.New(llm.Config{
			Provider:  cfg.Provider,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Logger:    deps.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create llm client: %w", err)
		}
	}

	prompt, err := LoadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	cache, err := OpenCache(cfg.CacheDir, 0, deps.Logger)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &LLMGenerator{
		client:  client,
		prompt:  prompt,
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
		params:  llm.GenerationParams{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
		logger:  deps.Logger,
	}, nil
}

// Name implements Generator.
func (g *LLMGenerator) Name() string { return KindLLM }

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, fc model.FunctionContext) (v model.TemplateValues, err error) {
	cached := false
	defer func() { recordGenerate(KindLLM, err, cached) }()

	prompt := g.prompt.Build(fc)
	key := CacheKey(g.client.Model(), prompt)

	reply, hit, cerr := g.cache.Get(ctx, key)
	if cerr != nil {
		if errors.Is(cerr, context.Canceled) || errors.Is(cerr, context.DeadlineExceeded) {
			return v, cerr
		}
		g.logger.Warn("response cache unavailable", slog.String("error", cerr.Error()))
	}
	if hit {
		if v, err = ParseValues(reply); err == nil {
			cached = true
			return v, nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return v, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	reply, err = g.client.Generate(ctx, prompt, g.params)
	observeBackend(KindLLM, g.client.Model(), time.Since(start))
	if err != nil {
		return v, err
	}

	v, err = ParseValues(reply)
	if err != nil {
		g.logger.Debug("unparseable reply",
			slog.String("function", fc.QualifiedName),
			slog.String("reply", llm.Redact(reply)),
		)
		return v, err
	}

	if perr := g.cache.Put(ctx, key, reply); perr != nil {
		g.logger.Warn("response cache write failed", slog.String("error", perr.Error()))
	}
	return v, nil
}

// Close implements Generator.
func (g *LLMGenerator) Close() error {
	return g.cache.Close()
}
