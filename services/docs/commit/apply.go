// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package commit writes approved docstring edits back to source files.
//
// The sweep in ApplyEdits is the only place that translates original line
// numbers into post-edit positions. Everything upstream works in the
// coordinates of the file as it was parsed.
package commit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Line terminators recognised by DetectTerminator.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// SplitLines splits content into lines that keep their terminators.
// The last line has no terminator when the content does not end in one.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, LF)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// DetectTerminator returns CRLF when most lines of content end in "\r\n",
// LF otherwise.
func DetectTerminator(content string) string {
	total := strings.Count(content, LF)
	if total == 0 {
		return LF
	}
	if crlf := strings.Count(content, CRLF); crlf*2 > total {
		return CRLF
	}
	return LF
}

// SortEdits orders edits ascending by original insertion line. Ties keep
// discovery order (Seq, then input position).
func SortEdits(edits []model.DocstringEdit) []model.DocstringEdit {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b model.DocstringEdit) int {
		if c := cmp.Compare(a.NewDocstring.StartLine, b.NewDocstring.StartLine); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return sorted
}

// ApplyEdits runs the offset sweep over a terminator-preserving line buffer.
//
// Description:
//
//	Edits are sorted ascending by NewDocstring.StartLine, then applied in a
//	single forward pass with a running offset that carries the net line
//	delta of every earlier edit:
//
//	  adjusted = start + offset
//	  remove existing span [existing.start+offset, +len(existing))
//	  ABOVE: adjusted = max(0, adjusted - removed)
//	  insert new lines at adjusted, each prefixed with OffsetSpaces spaces
//	  offset += inserted - removed
//
//	The input slice is not modified. On error the returned buffer is nil,
//	so callers never see a partially edited file.
//
// Inputs:
//   - lines: File content as returned by SplitLines.
//   - edits: Edits in any order, all in original coordinates.
//   - terminator: Appended to every inserted line.
//
// Outputs:
//   - []string: The edited buffer.
//   - int: Number of edits applied.
//   - error: Wraps model.ErrLineOutOfRange when an edit points outside the
//     buffer.
func ApplyEdits(lines []string, edits []model.DocstringEdit, terminator string) ([]string, int, error) {
	buf := slices.Clone(lines)
	if len(edits) == 0 {
		return buf, 0, nil
	}

	offset := 0
	for _, e := range SortEdits(edits) {
		adjusted := e.NewDocstring.StartLine + offset

		removed := 0
		if e.Existing != nil && len(e.Existing.Lines) > 0 {
			start := e.Existing.StartLine + offset
			end := start + len(e.Existing.Lines)
			if start < 0 || end > len(buf) {
				return nil, 0, fmt.Errorf("%w: existing docstring of %s spans [%d,%d) in %d lines",
					model.ErrLineOutOfRange, e.QualifiedName, start, end, len(buf))
			}
			buf = slices.Delete(buf, start, end)
			removed = len(e.Existing.Lines)
		}

		if e.Location == model.LocationAbove {
			adjusted = max(0, adjusted-removed)
		}
		if adjusted < 0 || adjusted > len(buf) {
			return nil, 0, fmt.Errorf("%w: insertion line %d for %s in %d lines",
				model.ErrLineOutOfRange, adjusted, e.QualifiedName, len(buf))
		}

		block := indentBlock(e.NewDocstring.Lines, e.OffsetSpaces, terminator)
		if adjusted == len(buf) && adjusted > 0 && !strings.HasSuffix(buf[adjusted-1], LF) {
			buf[adjusted-1] += terminator
		}
		buf = slices.Insert(buf, adjusted, block...)

		offset += len(block) - removed
	}
	return buf, len(edits), nil
}

// indentBlock prefixes each line with n spaces and terminates it. Lines
// that still carry terminators or embed newlines (editor output) are
// normalised first.
func indentBlock(lines []string, n int, terminator string) []string {
	pad := strings.Repeat(" ", n)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(l, "\r\n")
		for _, part := range strings.Split(l, LF) {
			out = append(out, pad+strings.TrimSuffix(part, "\r")+terminator)
		}
	}
	return out
}
