// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model holds the records passed between the docnsrt stages:
// located functions, rendered docstrings, pending file edits and the
// identity guard used to detect concurrent writers.
package model

import (
	"fmt"
	"time"
)

// =============================================================================
// Location
// =============================================================================

// Location is where a docstring sits relative to its function signature.
type Location int

const (
	// LocationAbove is a leading comment block (C#, Go, Java).
	LocationAbove Location = iota

	// LocationBelow is a body literal that follows the signature (Python).
	LocationBelow

	// LocationInline shares the signature line.
	LocationInline
)

// String returns the lowercase name of the location.
func (l Location) String() string {
	switch l {
	case LocationAbove:
		return "above"
	case LocationBelow:
		return "below"
	case LocationInline:
		return "inline"
	default:
		return fmt.Sprintf("location(%d)", int(l))
	}
}

// =============================================================================
// Function Context
// =============================================================================

// Docstring is a span of documentation lines anchored at a 0-indexed line.
//
// Lines never carry line terminators. For an existing docstring the lines
// are the raw source lines, indentation included, so len(Lines) is the
// number of source lines the span covers.
type Docstring struct {
	Lines     []string `json:"lines"`
	StartLine int      `json:"start_line"`
}

// EndLine returns the exclusive end line of the span.
func (d Docstring) EndLine() int {
	return d.StartLine + len(d.Lines)
}

// Parameter is one entry of a function's parameter list.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"desc,omitempty"`
}

// FunctionContext describes one discovered function or method.
//
// Description:
//
//	Created by a Locator for every function that passed the include and
//	exclude name filters. StartLine is the 0-indexed line of the signature
//	(the decorator line is not used). SignatureEndLine is the 0-indexed line
//	where the signature ends, which differs from StartLine only for
//	signatures that span several lines.
//
// Thread Safety: Treated as immutable after creation.
type FunctionContext struct {
	// QualifiedName is module[.scope...].name. Not unique across overloads.
	QualifiedName string `json:"qualified_name"`

	// Name is the bare function name matched against the name globs.
	Name string `json:"name"`

	// Signature is the rendered parameter list in language syntax.
	Signature string `json:"signature"`

	Parameters []Parameter `json:"parameters"`

	// ReturnType is the annotated return type, empty when absent.
	ReturnType string `json:"return_type,omitempty"`

	// Body is the source text of the function body, used for prompts.
	Body string `json:"body,omitempty"`

	// Existing is the attached documentation block, nil when none.
	Existing *Docstring `json:"existing_docstring,omitempty"`

	StartLine        int `json:"start_line"`
	SignatureEndLine int `json:"signature_end_line"`
}

// HasDocstring reports whether the function already carries documentation.
func (f FunctionContext) HasDocstring() bool {
	return f.Existing != nil && len(f.Existing.Lines) > 0
}

// =============================================================================
// Generated Content
// =============================================================================

// ExceptionDoc documents one exception a function may raise.
type ExceptionDoc struct {
	Type        string `json:"type"`
	Description string `json:"desc"`
}

// TemplateValues is the semantic content a generator produces for one
// function. Renderers turn it into style-specific comment lines.
type TemplateValues struct {
	Summary           string         `json:"summary"`
	Parameters        []Parameter    `json:"parameters"`
	ReturnDescription string         `json:"return_description"`
	ReturnType        string         `json:"return_type"`
	Remarks           string         `json:"remarks"`
	Exceptions        []ExceptionDoc `json:"exceptions"`
}

// Rendered is a Renderer's output for one function.
type Rendered struct {
	Lines        []string
	StartLine    int
	OffsetSpaces int
	Location     Location
}

// =============================================================================
// Docstring Edit
// =============================================================================

// DocstringEdit is one pending insertion or replacement in a file.
//
// Description:
//
//	NewDocstring.StartLine is always in the coordinates of the file as it
//	was parsed. The commit engine translates it to post-edit coordinates
//	with a running offset, so edits must never be pre-adjusted by callers.
//
// Thread Safety: Not safe for concurrent mutation. The approval gate may
// replace NewDocstring.Lines after an editor round trip.
type DocstringEdit struct {
	QualifiedName string
	Signature     string
	FilePath      string

	NewDocstring Docstring
	Existing     *Docstring

	// OffsetSpaces is prepended as literal spaces to every new line.
	OffsetSpaces int
	Location     Location

	// Seq is the discovery order within the file. Ties on
	// NewDocstring.StartLine are broken by Seq.
	Seq int
}

// NewEdit combines a located function and its rendered docstring.
func NewEdit(path string, seq int, fc FunctionContext, r Rendered) DocstringEdit {
	return DocstringEdit{
		QualifiedName: fc.QualifiedName,
		Signature:     fc.Signature,
		FilePath:      path,
		NewDocstring:  Docstring{Lines: r.Lines, StartLine: r.StartLine},
		Existing:      fc.Existing,
		OffsetSpaces:  r.OffsetSpaces,
		Location:      r.Location,
		Seq:           seq,
	}
}

// =============================================================================
// File Guard
// =============================================================================

// FileGuard is the identity of a file captured when it was parsed.
// A commit is refused when the modification time or size has changed.
type FileGuard struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Matches reports whether the given stat values equal the captured ones.
func (g FileGuard) Matches(modTime time.Time, size int64) bool {
	return g.ModTime.Equal(modTime) && g.Size == size
}
