// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package files selects the source files a run operates on.
package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Extensions maps a language name to the file extensions it owns.
var Extensions = map[string][]string{
	"python": {".py"},
	"csharp": {".cs"},
}

// Discover returns the files under root that match any include pattern,
// match no exclude pattern and carry one of exts.
//
// Description:
//
//	Patterns use doublestar syntax relative to root with forward slashes
//	("*.py", "src/**/*.py", "**/test_*"). An exclude pattern also matches
//	when it matches the bare file name, so "test_*.py" drops test files
//	at any depth. The result is sorted and holds paths joined onto root.
//
// Inputs:
//   - ctx: Checked between include patterns.
//   - root: Project directory.
//   - include: At least one pattern; "**/*" selects everything.
//   - exclude: May be empty.
//   - exts: Allowed extensions including the dot. Empty allows all.
//
// Outputs:
//   - []string: Matching paths, deduplicated and sorted.
//   - error: Non-nil for an invalid pattern or an unreadable root.
func Discover(ctx context.Context, root string, include, exclude, exts []string) ([]string, error) {
	for _, p := range append(slices.Clone(include), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project dir %s is not a directory", root)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	for _, pattern := range include {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discover canceled: %w", err)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if Excluded(rel, exclude) || !hasExtension(rel, exts) {
				continue
			}
			seen[rel] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for rel := range seen {
		out = append(out, filepath.Join(root, filepath.FromSlash(rel)))
	}
	slices.Sort(out)

	slog.Debug("discovered files", slog.String("root", root), slog.Int("count", len(out)))
	return out, nil
}

// Excluded reports whether rel matches any pattern, either as a whole
// path or by its base name.
func Excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
