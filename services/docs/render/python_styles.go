// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"fmt"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

const pyQuotes = `"""`

// placeBelow anchors a body-literal docstring on the line after the
// signature, one indent unit deeper than the "def" line.
func placeBelow(path string, fc model.FunctionContext, lines []string) (model.Rendered, error) {
	indent, err := ReadIndent(path, fc.StartLine)
	if err != nil {
		return model.Rendered{}, fmt.Errorf("unable to read start line %d: %w", fc.StartLine, err)
	}
	return model.Rendered{
		Lines:        lines,
		StartLine:    fc.SignatureEndLine + 1,
		OffsetSpaces: indent + IndentUnit,
		Location:     model.LocationBelow,
	}, nil
}

// PEPRenderer writes PEP 257 docstrings with Google-style sections.
//
//	"""
//	Summary.
//
//	Args:
//	    name (type): description
//
//	Returns:
//	    description
//	"""
type PEPRenderer struct{}

// Style implements Renderer.
func (r *PEPRenderer) Style() string { return StylePEP }

// Location implements Renderer.
func (r *PEPRenderer) Location() model.Location { return model.LocationBelow }

// Render implements Renderer.
func (r *PEPRenderer) Render(path string, fc model.FunctionContext, v model.TemplateValues) (model.Rendered, error) {
	lines := []string{pyQuotes}
	lines = append(lines, paragraph(v.Summary)...)

	if params := parameters(fc, v); len(params) > 0 {
		lines = append(lines, "", "Args:")
		for _, p := range params {
			lines = append(lines, fmt.Sprintf("    %s (%s): %s", p.Name, orDefault(p.Type, "Any"), orDefault(p.Description, "")))
		}
	}
	if v.ReturnDescription != "" {
		lines = append(lines, "", "Returns:", "    "+orDefault(v.ReturnDescription, ""))
	}
	if len(v.Exceptions) > 0 {
		lines = append(lines, "", "Raises:")
		for _, e := range v.Exceptions {
			lines = append(lines, fmt.Sprintf("    %s: %s", orDefault(e.Type, "Exception"), orDefault(e.Description, "")))
		}
	}
	if v.Remarks != "" {
		lines = append(lines, "", "Note:")
		for _, l := range paragraph(v.Remarks) {
			lines = append(lines, "    "+l)
		}
	}
	lines = append(lines, pyQuotes)

	return placeBelow(path, fc, lines)
}

// NumpyRenderer writes numpydoc docstrings.
type NumpyRenderer struct{}

// Style implements Renderer.
func (r *NumpyRenderer) Style() string { return StyleNumpy }

// Location implements Renderer.
func (r *NumpyRenderer) Location() model.Location { return model.LocationBelow }

// Render implements Renderer.
func (r *NumpyRenderer) Render(path string, fc model.FunctionContext, v model.TemplateValues) (model.Rendered, error) {
	lines := []string{pyQuotes}
	lines = append(lines, paragraph(v.Summary)...)

	if params := parameters(fc, v); len(params) > 0 {
		lines = append(lines, "", "Parameters", "----------")
		for _, p := range params {
			lines = append(lines, fmt.Sprintf("%s : %s", p.Name, orDefault(p.Type, "Any")), "    "+orDefault(p.Description, ""))
		}
	}
	if v.ReturnDescription != "" {
		lines = append(lines, "", "Returns", "-------",
			orDefault(v.ReturnType, orDefault(fc.ReturnType, "Any")),
			"    "+orDefault(v.ReturnDescription, ""))
	}
	if len(v.Exceptions) > 0 {
		lines = append(lines, "", "Raises", "------")
		for _, e := range v.Exceptions {
			lines = append(lines, orDefault(e.Type, "Exception"), "    "+orDefault(e.Description, ""))
		}
	}
	if v.Remarks != "" {
		lines = append(lines, "", "Notes", "-----")
		lines = append(lines, paragraph(v.Remarks)...)
	}
	lines = append(lines, pyQuotes)

	return placeBelow(path, fc, lines)
}
