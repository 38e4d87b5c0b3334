// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/docnsrt/services/docs/config"
	"github.com/AleutianAI/docnsrt/services/docs/files"
	"github.com/AleutianAI/docnsrt/services/docs/generate"
	"github.com/AleutianAI/docnsrt/services/docs/pipeline"
	"github.com/AleutianAI/docnsrt/services/docs/review"
	"github.com/AleutianAI/docnsrt/services/docs/telemetry"
)

// shutdownTimeout bounds the telemetry flush on exit.
const shutdownTimeout = 5 * time.Second

// prepare loads and validates the config, installs the logger and starts
// telemetry. The returned cleanup flushes telemetry and writes the
// metrics textfile.
func prepare(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := loadConfig(&opts, cmd.Flags().Changed)
	if err != nil {
		return nil, nil, nil, &exitError{code: ExitUsage, err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, &exitError{code: ExitUsage, err: err}
	}

	level := effectiveLevel(opts.logLevel, cmd.Flags().Changed("log-level"), cfg.LogLevel)
	logger := newLogger(cmd.ErrOrStderr(), level)
	if cfg.Source != "" {
		logger.Debug("loaded config", slog.String("path", cfg.Source))
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry, version)
	if err != nil {
		return nil, nil, nil, &exitError{code: ExitUsage, err: err}
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
		if err := telemetry.WriteMetrics(cfg.Telemetry.MetricsTextfile); err != nil {
			logger.Warn("metrics textfile not written", slog.String("error", err.Error()))
		}
	}
	return cfg, logger, cleanup, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runDocnsrt(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	cmd.SetContext(ctx)

	cfg, logger, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Check {
		return check(ctx, cmd, cfg, logger)
	}

	gen, err := generate.New(generatorConfig(cfg), generate.Deps{Logger: logger})
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	defer func() {
		if err := gen.Close(); err != nil {
			logger.Warn("closing generator", slog.String("error", err.Error()))
		}
	}()

	deps := pipeline.Deps{
		Generator: gen,
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	}
	if !cfg.ForceAll {
		prompter, err := review.NewPrompter(cfg.PromptMode)
		if err != nil {
			return &exitError{code: ExitUsage, err: err}
		}
		deps.Prompter = prompter
		deps.Editor = review.NewExternalEditor(cfg.Editor, editorSuffix(cfg.Language))
	}

	summary, err := pipeline.New(deps).Run(ctx, cfg)
	summary.Print(cmd.OutOrStdout())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &exitError{code: ExitFailures, err: errors.New("interrupted")}
		}
		return &exitError{code: ExitUsage, err: err}
	}
	if !summary.OK() {
		return &exitError{code: ExitFailures}
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	cmd.SetContext(ctx)

	cfg, logger, cleanup, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	return check(ctx, cmd, cfg, logger)
}

func check(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	report, err := pipeline.New(pipeline.Deps{Logger: logger, Out: cmd.OutOrStdout()}).Check(ctx, cfg)
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	report.Print(cmd.OutOrStdout())
	if !report.OK() {
		return &exitError{code: ExitFailures}
	}
	return nil
}

func generatorConfig(cfg *config.Config) generate.Config {
	g := cfg.Generator
	return generate.Config{
		Kind:              g.Kind,
		NoSummary:         g.NoSummary,
		Provider:          g.Provider,
		Model:             g.Model,
		BaseURL:           g.BaseURL,
		APIKeyEnv:         g.APIKeyEnv,
		Temperature:       g.Temperature,
		MaxTokens:         g.MaxTokens,
		RequestsPerMinute: g.RequestsPerMinute,
		CacheDir:          g.CacheDir,
		PromptFile:        g.PromptFile,
	}
}

// editorSuffix lets the editor pick a syntax mode for the temp file.
func editorSuffix(language string) string {
	if exts := files.Extensions[language]; len(exts) > 0 {
		return exts[0]
	}
	return ".txt"
}
