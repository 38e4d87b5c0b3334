// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/docnsrt/services/docs/config"
	"github.com/AleutianAI/docnsrt/services/docs/files"
	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// MissingDocstring is one undocumented function found by Check.
type MissingDocstring struct {
	Path          string
	Line          int
	QualifiedName string
}

// CheckReport is the result of Check.
type CheckReport struct {
	Files     int
	Functions int
	Missing   []MissingDocstring
	Errors    []error
}

// OK reports whether every selected function is documented and every
// file could be read.
func (r CheckReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Errors) == 0
}

// Print lists missing docstrings as path:line name, 1-indexed.
func (r CheckReport) Print(w io.Writer) {
	for _, m := range r.Missing {
		fmt.Fprintf(w, "%s:%d %s\n", m.Path, m.Line+1, m.QualifiedName)
	}
	for _, err := range r.Errors {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	fmt.Fprintf(w, "%d/%d functions documented\n", r.Functions-len(r.Missing), r.Functions)
}

// Check locates functions without generating, reviewing or writing.
//
// Outputs:
//   - CheckReport: Missing docstrings in file then discovery order.
//   - error: Setup failures and cancellation only.
func (p *Pipeline) Check(ctx context.Context, cfg *config.Config) (CheckReport, error) {
	var report CheckReport

	loc, err := p.newLocator(cfg, p.deps.Logger)
	if err != nil {
		return report, err
	}
	paths, err := files.Discover(ctx, cfg.ProjectDir, cfg.Files, cfg.IgnoreFiles, files.Extensions[cfg.Language])
	if err != nil {
		return report, fmt.Errorf("discover files: %w", err)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Files++
		fcs, err := loc.Locate(ctx, path, cfg.Functions, cfg.IgnoreFunctions)
		if err != nil {
			p.deps.Logger.Warn("skipping file", slog.String("file", path), slog.String("error", err.Error()))
			report.Errors = append(report.Errors, model.NewFileError(path, model.StageLocate, err))
			continue
		}
		report.Functions += len(fcs)
		for _, fc := range fcs {
			if fc.HasDocstring() {
				continue
			}
			report.Missing = append(report.Missing, MissingDocstring{
				Path:          path,
				Line:          fc.StartLine,
				QualifiedName: fc.QualifiedName,
			})
		}
	}
	return report, nil
}
