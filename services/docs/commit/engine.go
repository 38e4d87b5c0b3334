// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package commit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/docnsrt/services/docs/lock"
	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Engine commits docstring edits to files under an exclusive lock.
//
// Description:
//
//	Commit is the read-modify-write step of the pipeline. It takes the
//	lock before looking at the file, refuses to write when the file no
//	longer matches the guard captured at parse time, and rewrites the file
//	in place while the lock is still held.
//
// Thread Safety: Engine is safe for concurrent use on different files.
type Engine struct {
	locker lock.FileLocker
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLocker overrides the platform file locker.
func WithLocker(l lock.FileLocker) EngineOption {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine using the platform locker.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		locker: lock.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CaptureGuard records the modification time and size of path.
func CaptureGuard(path string) (model.FileGuard, error) {
	st, err := os.Stat(path)
	if err != nil {
		return model.FileGuard{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return model.FileGuard{Path: path, ModTime: st.ModTime(), Size: st.Size()}, nil
}

// Commit applies edits to path and returns the number written.
//
// Description:
//
//	 1. Open read-write and take the exclusive lock (non-blocking).
//	 2. Stat through the locked handle and compare against guard.
//	 3. Read the whole file and split it keeping terminators.
//	 4. Run ApplyEdits.
//	 5. Truncate, write from offset 0 and fsync.
//	 6. Unlock and close on every return path.
//
//	Any failure before step 5 leaves the file untouched. An empty edit list
//	performs no write at all.
//
// Outputs:
//   - int: Number of edits written.
//   - error: Wraps model.ErrFileChanged, lock.ErrFileLocked,
//     model.ErrLineOutOfRange or an I/O error. Never retried.
func (e *Engine) Commit(ctx context.Context, path string, edits []model.DocstringEdit, guard model.FileGuard) (n int, err error) {
	ctx, span := startCommitSpan(ctx, path, len(edits))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		recordCommit(ctx, n, err)
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("commit canceled: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	if err := e.locker.Lock(f); err != nil {
		return 0, fmt.Errorf("lock: %w", err)
	}
	defer func() {
		if uerr := e.locker.Unlock(f); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()

	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	if !guard.Matches(st.ModTime(), st.Size()) {
		e.logger.Error("file changed externally",
			slog.String("file", path),
			slog.Int64("size", st.Size()),
			slog.Int64("expected_size", guard.Size))
		return 0, fmt.Errorf("%w (mtime or size mismatch)", model.ErrFileChanged)
	}

	if len(edits) == 0 {
		return 0, nil
	}

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	content := string(raw)

	e.logger.Debug("writing docstrings", slog.String("file", path), slog.Int("edits", len(edits)))
	for _, ed := range edits {
		e.logger.Debug("inserting docstring",
			slog.String("file", path),
			slog.String("function", ed.QualifiedName),
			slog.Int("line", ed.NewDocstring.StartLine),
		)
	}
	lines, applied, err := ApplyEdits(SplitLines(content), edits, DetectTerminator(content))
	if err != nil {
		return 0, err
	}
	out := strings.Join(lines, "")

	if err := f.Truncate(0); err != nil {
		return 0, fmt.Errorf("truncate: %w", err)
	}
	if _, err := f.WriteAt([]byte(out), 0); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync: %w", err)
	}

	span.SetAttributes(attribute.Int("commit.bytes", len(out)))
	e.logger.Info("wrote docstrings", slog.String("file", path), slog.Int("count", applied))
	return applied, nil
}
