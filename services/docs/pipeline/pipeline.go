// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline runs the docnsrt stages over a project: discover,
// locate, generate, render, review and commit, one file at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/docnsrt/services/docs/commit"
	"github.com/AleutianAI/docnsrt/services/docs/config"
	"github.com/AleutianAI/docnsrt/services/docs/files"
	"github.com/AleutianAI/docnsrt/services/docs/generate"
	"github.com/AleutianAI/docnsrt/services/docs/locate"
	"github.com/AleutianAI/docnsrt/services/docs/model"
	"github.com/AleutianAI/docnsrt/services/docs/render"
	"github.com/AleutianAI/docnsrt/services/docs/review"
)

// ErrNoGenerator is returned by Run when Deps carries no generator.
var ErrNoGenerator = errors.New("pipeline: no generator configured")

// Deps are the collaborators of one pipeline.
//
// Description:
//
//	Locators and renderers are chosen from the run configuration; the
//	rest is injected so tests and the CLI can substitute them.
type Deps struct {
	Generator generate.Generator

	// Prompter and Editor drive the approval gate. Prompter may be nil
	// when force_all is set.
	Prompter review.Prompter
	Editor   review.Editor

	// Engine defaults to commit.NewEngine with Logger.
	Engine *commit.Engine

	Logger *slog.Logger

	// Out receives the summary and check report. Defaults to os.Stdout.
	Out io.Writer
}

// Pipeline is the per-run orchestrator.
//
// Thread Safety: A Pipeline runs one project at a time. Run and Check
// must not be called concurrently on the same instance.
type Pipeline struct {
	deps Deps
}

// New fills defaults into deps and returns a Pipeline.
func New(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Engine == nil {
		deps.Engine = commit.NewEngine(commit.WithLogger(deps.Logger))
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &Pipeline{deps: deps}
}

// run bundles the per-run state passed between file steps.
type run struct {
	cfg      *config.Config
	logger   *slog.Logger
	locator  locate.Locator
	renderer render.Renderer
	gate     *review.Gate
	watcher  *ChangeWatcher
	summary  *Summary
}

// Run processes every selected file of cfg.ProjectDir.
//
// Description:
//
//	Files are handled one after another. Inside a file, content is
//	generated for all functions in parallel (bounded by
//	generator.concurrency), then rendered and reviewed in discovery
//	order, then committed in one sweep. Locate, review and commit
//	failures abandon the file; generate and render failures drop the
//	function. Every failure lands in Summary.Errors. A QUIT discards the
//	current file's edits and moves on.
//
// Inputs:
//   - ctx: Cancels generation, prompts and the file loop.
//   - cfg: A validated configuration.
//
// Outputs:
//   - Summary: Counts and collected errors.
//   - error: Setup failures and cancellation only.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), DryRun: !cfg.Write}
	if p.deps.Generator == nil {
		return summary, ErrNoGenerator
	}
	logger := p.deps.Logger.With(slog.String("run_id", summary.RunID))

	loc, err := p.newLocator(cfg, logger)
	if err != nil {
		return summary, err
	}
	rnd, err := render.NewRenderer(cfg.Language, cfg.Style)
	if err != nil {
		return summary, err
	}
	order, err := review.ParseOrder(cfg.ReviewOrder)
	if err != nil {
		return summary, err
	}

	paths, err := files.Discover(ctx, cfg.ProjectDir, cfg.Files, cfg.IgnoreFiles, files.Extensions[cfg.Language])
	if err != nil {
		return summary, fmt.Errorf("discover files: %w", err)
	}
	logger.Info("run started",
		slog.String("project_dir", cfg.ProjectDir),
		slog.Int("files", len(paths)),
		slog.String("generator", p.deps.Generator.Name()),
	)

	r := &run{cfg: cfg, logger: logger, locator: loc, renderer: rnd, summary: &summary}

	gateOpts := []review.GateOption{
		review.WithOrder(order),
		review.WithForce(cfg.ForceAll),
		review.WithLogger(logger),
	}
	if !cfg.ForceAll {
		if w, err := NewChangeWatcher(logger); err != nil {
			logger.Warn("change watcher unavailable", slog.String("error", err.Error()))
		} else {
			r.watcher = w
			defer w.Close()
			gateOpts = append(gateOpts, review.WithChangeCheck(w.Changed))
		}
	}
	r.gate = review.NewGate(p.deps.Prompter, p.deps.Editor, gateOpts...)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Files++
		if err := p.processFile(ctx, r, path); err != nil {
			return summary, err
		}
	}

	logger.Info("run finished",
		slog.Int("written", summary.Written),
		slog.Int("candidates", summary.Candidates),
		slog.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

// processFile runs every stage for one file. Only cancellation is
// returned; everything else is recorded in the summary.
func (p *Pipeline) processFile(ctx context.Context, r *run, path string) error {
	logger := r.logger.With(slog.String("file", path))

	guard, err := commit.CaptureGuard(path)
	if err != nil {
		r.summary.addError(model.NewFileError(path, model.StageLocate, err))
		return nil
	}

	fcs, err := r.locator.Locate(ctx, path, r.cfg.Functions, r.cfg.IgnoreFunctions)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("skipping file", slog.String("error", err.Error()))
		r.summary.addError(model.NewFileError(path, model.StageLocate, err))
		return nil
	}
	r.summary.Candidates += len(fcs)

	if r.cfg.SkipExisting {
		kept := fcs[:0]
		for _, fc := range fcs {
			if fc.HasDocstring() {
				r.summary.Skipped++
				continue
			}
			kept = append(kept, fc)
		}
		fcs = kept
	}
	if len(fcs) == 0 {
		return nil
	}

	values, genErrs := p.generateAll(ctx, fcs, r.cfg.Generator.Concurrency)
	if err := ctx.Err(); err != nil {
		return err
	}

	edits := make([]model.DocstringEdit, 0, len(fcs))
	for i, fc := range fcs {
		if genErrs[i] != nil {
			logger.Warn("generation failed",
				slog.String("function", fc.QualifiedName),
				slog.String("error", genErrs[i].Error()),
			)
			r.summary.addError(model.NewFunctionError(path, fc.QualifiedName, model.StageGenerate, genErrs[i]))
			continue
		}
		rendered, err := r.renderer.Render(path, fc, values[i])
		if err != nil {
			r.summary.addError(model.NewFunctionError(path, fc.QualifiedName, model.StageRender, err))
			continue
		}
		edits = append(edits, model.NewEdit(path, i, fc, rendered))
	}
	if len(edits) == 0 {
		return nil
	}

	if r.watcher != nil {
		if err := r.watcher.Watch(path); err != nil {
			logger.Debug("watch failed", slog.String("error", err.Error()))
		}
		defer r.watcher.Unwatch(path)
	}

	cont, approved, err := r.gate.Review(ctx, edits)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.summary.addError(model.NewFileError(path, model.StageReview, err))
		return nil
	}
	if !cont {
		logger.Info("review quit, discarding edits", slog.Int("edits", len(edits)))
		r.summary.Skipped += len(edits)
		return nil
	}
	r.summary.Skipped += len(edits) - len(approved)
	if len(approved) == 0 {
		return nil
	}

	if !r.cfg.Write {
		for _, e := range approved {
			fmt.Fprintln(p.deps.Out, review.Preview(e))
		}
		return nil
	}

	if r.watcher != nil {
		r.watcher.Unwatch(path)
	}
	n, err := p.deps.Engine.Commit(ctx, path, approved, guard)
	if err != nil {
		commitErrors.WithLabelValues(commitReason(err)).Inc()
		r.summary.addError(model.NewFileError(path, model.StageCommit, err))
		return nil
	}
	docstringsWritten.Add(float64(n))
	r.summary.Written += n
	return nil
}

// generateAll produces values for every function. Results are indexed
// like fcs so the commit order never depends on completion order.
func (p *Pipeline) generateAll(ctx context.Context, fcs []model.FunctionContext, limit int) ([]model.TemplateValues, []error) {
	values := make([]model.TemplateValues, len(fcs))
	errs := make([]error, len(fcs))

	var g errgroup.Group
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, fc := range fcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			values[i], errs[i] = p.deps.Generator.Generate(ctx, fc)
			return nil
		})
	}
	_ = g.Wait()
	return values, errs
}

func (p *Pipeline) newLocator(cfg *config.Config, logger *slog.Logger) (locate.Locator, error) {
	opts := []locate.Option{
		locate.WithAttachAcrossBlankLines(cfg.AttachAcrossBlankLines),
		locate.WithLogger(logger),
	}
	if cfg.MaxFileSize > 0 {
		opts = append(opts, locate.WithMaxFileSize(cfg.MaxFileSize))
	}
	return locate.NewLocator(cfg.Language, opts...)
}
